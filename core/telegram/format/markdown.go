package format

import "strings"

// specialsV2 are the characters MarkdownV2 reserves in ordinary text.
const specialsV2 = "_*[]()~`>#+-=|{}.!\\"

var (
	textV2 = escaper(specialsV2)
	codeV2 = escaper("`\\")
	urlV2  = escaper(")\\")
)

func escaper(chars string) *strings.Replacer {
	pairs := make([]string, 0, 2*len(chars))
	for _, r := range chars {
		pairs = append(pairs, string(r), `\`+string(r))
	}
	return strings.NewReplacer(pairs...)
}

// EscapeV2 escapes plain text for MarkdownV2.
func EscapeV2(text string) string {
	return textV2.Replace(text)
}

// EscapeV2Code escapes the content of a code or pre entity, where only the
// backtick and backslash are reserved.
func EscapeV2Code(text string) string {
	return codeV2.Replace(text)
}

// EscapeV2URL escapes the URL part of an inline link, where only ')' and
// backslash are reserved.
func EscapeV2URL(url string) string {
	return urlV2.Replace(url)
}
