// Package filters provides reusable block content filters for the capture
// close operations.
package filters

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-layout/pkg/capture"
)

var (
	htmlPolicyOnce sync.Once
	htmlPolicy     *bluemonday.Policy
)

// Trim removes leading and trailing whitespace.
func Trim(content string) string {
	return strings.TrimSpace(content)
}

// Collapse folds runs of whitespace into single spaces and trims the result.
func Collapse(content string) string {
	return strings.Join(strings.Fields(content), " ")
}

// Upper maps the content to upper case.
func Upper(content string) string {
	return strings.ToUpper(content)
}

// Prefix returns a filter that prepends the given string to every line of
// the block's content.
func Prefix(prefix string) capture.Filter {
	return func(content string) string {
		if content == "" {
			return content
		}
		lines := strings.Split(content, "\n")
		for i, line := range lines {
			if line == "" {
				continue
			}
			lines[i] = prefix + line
		}
		return strings.Join(lines, "\n")
	}
}

// HTML returns a filter that sanitizes block content with a bluemonday UGC
// policy, stripping scripts and event handlers while keeping common markup.
func HTML() capture.Filter {
	policy := sanitizerPolicy()
	return func(content string) string {
		return policy.Sanitize(content)
	}
}

func sanitizerPolicy() *bluemonday.Policy {
	htmlPolicyOnce.Do(func() {
		htmlPolicy = bluemonday.UGCPolicy()
	})
	return htmlPolicy
}
