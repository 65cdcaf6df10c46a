package xmlgen

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Submission maps placeholder names to the values that replace them.
type Submission map[string]string

// Render replaces every well-formed placeholder in text with its value from
// sub. Values are inserted verbatim, without XML escaping.
//
// Every placeholder present in text must have a value in sub; otherwise a
// *RenderError naming all missing keys is returned and nothing is rendered.
// Keys of sub that text does not use are ignored.
func Render(text string, sub Submission) (string, error) {
	var missing []string
	for _, name := range Extract(text) {
		if _, ok := sub[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &RenderError{Missing: missing}
	}

	return placeholderPattern.ReplaceAllStringFunc(text, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]
		return sub[name]
	}), nil
}

// CheckWellFormed tokenizes out as XML and returns the first syntax error.
// It never changes the rendered output; callers only use it for a warning.
func CheckWellFormed(out string) error {
	if strings.TrimSpace(out) == "" {
		return errors.New("empty document")
	}
	dec := xml.NewDecoder(strings.NewReader(out))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
