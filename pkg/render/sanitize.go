package render

import (
	"html"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	markupPolicyOnce sync.Once
	markupPolicy     *bluemonday.Policy
)

// StripMarkup is a ValueFilter that removes every HTML element from value,
// leaving plain text. Entities are decoded before the policy runs, so an
// encoded tag such as "&lt;b&gt;" is stripped like a literal one; the
// policy's own escaping of stray "<" or "&" is then undone.
func StripMarkup(_ string, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	return html.UnescapeString(markupSanitizer().Sanitize(decodeEntities(value))), nil
}

const maxEntityPasses = 4

// decodeEntities unescapes until the text stops changing, which unwraps
// double-encoded markup like "&amp;lt;b&amp;gt;".
func decodeEntities(value string) string {
	for pass := 0; pass < maxEntityPasses; pass++ {
		decoded := html.UnescapeString(value)
		if decoded == value {
			break
		}
		value = decoded
	}
	return value
}

func markupSanitizer() *bluemonday.Policy {
	markupPolicyOnce.Do(func() {
		markupPolicy = bluemonday.StrictPolicy()
	})
	return markupPolicy
}
