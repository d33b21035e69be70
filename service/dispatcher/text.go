package dispatcher

import (
	"regexp"
	"strings"
)

var (
	headingMarker  = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*`)
	boldMarker     = regexp.MustCompile(`\*\*|__`)
	checkboxMarker = regexp.MustCompile(`(?m)^([ \t]*)[-*][ \t]+\[[ xX]\][ \t]*`)
)

// PlainText strips heading, bold and checkbox markup from a markdown body.
// The transform is best effort: on failure the raw body is returned.
func PlainText(body string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = strings.TrimSpace(body)
		}
	}()
	text = strings.ReplaceAll(body, "\r\n", "\n")
	text = checkboxMarker.ReplaceAllString(text, "$1")
	text = headingMarker.ReplaceAllString(text, "")
	text = boldMarker.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
