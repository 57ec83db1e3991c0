package template

import "errors"

var (
	// ErrSourceNotFound is returned when a render is requested for a source
	// location that does not exist. Fatal for that render call.
	ErrSourceNotFound = errors.New("template: source not found")
	// ErrMissingName is returned when a direct value assignment omits the
	// block name.
	ErrMissingName = errors.New("template: block name required")
	// ErrExtendCycle is returned when an extension chain revisits a source
	// location it already passed through.
	ErrExtendCycle = errors.New("template: extension cycle detected")
)
