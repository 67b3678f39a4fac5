package utils

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var plainText = bluemonday.StrictPolicy()

// maxCleanPasses bounds how many layers of entity encoding CleanText peels off.
const maxCleanPasses = 4

// CleanText strips markup from user-supplied text and trims surrounding space.
//
// The result is stored as plain text, so entities the sanitizer escapes are decoded
// again. Decoding can expose markup that arrived entity-encoded ("&lt;script&gt;") or
// split across tags ("<<b>script>"), so sanitize and decode repeat until the text no
// longer changes. Text that is still changing after maxCleanPasses is returned in its
// escaped form.
func CleanText(s string) string {
	for i := 0; i < maxCleanPasses; i++ {
		next := html.UnescapeString(plainText.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	return strings.TrimSpace(plainText.Sanitize(s))
}

// RuneLen counts characters rather than bytes.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}
