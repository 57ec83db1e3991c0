package template

import "reflect"

// sanitizeVariables drops every callable-typed variable before the set is
// exposed to the executed body. Closures must never be reachable from inside
// a template body; dropping is silent. The caller's map is never mutated.
func sanitizeVariables(variables map[string]any) map[string]any {
	if len(variables) == 0 {
		return nil
	}
	out := make(map[string]any, len(variables))
	for name, value := range variables {
		if isCallable(value) {
			continue
		}
		out[name] = value
	}
	return out
}

func isCallable(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}
