package xmlgen

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"
)

// NewSubmission builds a Submission for variables from form input.
//
// Each variable takes the first value posted under its name. Variables with
// no posted value produce a *RenderError. Keys that are not variables are
// dropped, or rejected with ErrUnknownField when strict is set.
func NewSubmission(variables []string, form url.Values, strict bool) (Submission, error) {
	sub := make(Submission, len(variables))
	var missing []string
	for _, name := range variables {
		values, ok := form[name]
		if !ok || len(values) == 0 {
			missing = append(missing, name)
			continue
		}
		sub[name] = values[0]
	}

	if strict {
		var unknown []string
		for key := range form {
			if !slices.Contains(variables, key) {
				unknown = append(unknown, key)
			}
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
		}
	}

	if len(missing) > 0 {
		return nil, &RenderError{Missing: missing}
	}
	return sub, nil
}

// ParseAssignments turns "key=value" pairs into form values. A pair without
// "=" is an error; the value may itself contain "=".
func ParseAssignments(pairs []string) (url.Values, error) {
	form := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid assignment %q: want key=value", pair)
		}
		form.Add(strings.TrimSpace(key), value)
	}
	return form, nil
}
