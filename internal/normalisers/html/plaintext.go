package html

import (
	"html"
	"regexp"
	"strings"
)

// Format is the content.format value of HTML formatted messages.
const Format = "org.matrix.custom.html"

// Pre-compiled regular expressions for HTML parsing performance.
var (
	replyFallback     = regexp.MustCompile(`(?is)<mx-reply[^>]*>.*?</mx-reply>`)
	scriptTag         = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag          = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	htmlComments      = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements     = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|details|summary)>`)
	openBlockElements = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|details|summary)[^>]*>`)
	brTags            = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags            = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags           = regexp.MustCompile(`<[^>]+>`)
	multiSpaces       = regexp.MustCompile(`[ \t]+`)
)

// PlainText extracts the readable text of a formatted message body.
// Reply fallbacks are dropped so a reply is not found by the words it quotes.
func PlainText(formatted string) string {
	content := replyFallback.ReplaceAllString(formatted, "")
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	content = openBlockElements.ReplaceAllString(content, "\n")
	content = blockElements.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")

	content = allTags.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = multiSpaces.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	result := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

// Body returns the searchable body of message content: content.body when
// set, otherwise the plain text of an HTML formatted_body.
func Body(content map[string]any) string {
	if body, ok := content["body"].(string); ok && body != "" {
		return body
	}
	if format, _ := content["format"].(string); format != Format {
		return ""
	}
	formatted, _ := content["formatted_body"].(string)
	return PlainText(formatted)
}
