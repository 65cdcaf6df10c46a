// Package xmlgen implements the XML template generator: scanning the template
// directory, extracting {{placeholders}} and rendering submissions into them.
package xmlgen

import (
	"regexp"
	"sort"
)

// placeholderPattern matches "{{ name }}" where name is an identifier. The
// first submatch is the identifier.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Extract returns the sorted, de-duplicated identifiers of every well-formed
// placeholder in text. Malformed tokens such as {{1abc}} are ignored.
func Extract(text string) []string {
	seen := make(map[string]struct{})
	for _, m := range placeholderPattern.FindAllStringSubmatch(text, -1) {
		seen[m[1]] = struct{}{}
	}

	vars := make([]string, 0, len(seen))
	for name := range seen {
		vars = append(vars, name)
	}
	sort.Strings(vars)
	return vars
}
