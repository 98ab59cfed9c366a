package format

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	tele "gopkg.in/telebot.v4"
)

// EntitiesToMarkdownV2 renders message text together with its formatting
// entities as Telegram MarkdownV2 source. Offsets are UTF-16 code units, as
// delivered by the Bot API. Plain segments are escaped; entities that overlap
// without nesting are rendered as plain text.
func EntitiesToMarkdownV2(text string, entities []tele.MessageEntity) string {
	units := utf16.Encode([]rune(text))
	if len(entities) == 0 {
		return EscapeV2(text)
	}

	ents := make([]tele.MessageEntity, 0, len(entities))
	for _, e := range entities {
		if e.Length <= 0 || e.Offset < 0 || e.Offset+e.Length > len(units) {
			continue
		}
		ents = append(ents, e)
	}
	sort.SliceStable(ents, func(i, j int) bool {
		if ents[i].Offset != ents[j].Offset {
			return ents[i].Offset < ents[j].Offset
		}
		return ents[i].Length > ents[j].Length
	})

	var b strings.Builder
	renderRange(&b, units, 0, len(units), ents, "")
	return b.String()
}

func renderRange(b *strings.Builder, units []uint16, start, end int, ents []tele.MessageEntity, parent string) {
	cursor := start
	for i := 0; i < len(ents); i++ {
		e := ents[i]
		eEnd := e.Offset + e.Length
		if e.Offset < cursor || eEnd > end {
			continue
		}
		b.WriteString(escapeSegment(units[cursor:e.Offset], parent))

		var children []tele.MessageEntity
		for j := i + 1; j < len(ents); j++ {
			c := ents[j]
			if c.Offset >= eEnd {
				break
			}
			if c.Offset+c.Length <= eEnd {
				children = append(children, c)
			}
		}

		kind := string(e.Type)
		open, closing := entityMarkers(e)
		b.WriteString(open)
		if kind == "code" || kind == "pre" {
			b.WriteString(escapeSegment(units[e.Offset:eEnd], kind))
		} else {
			renderRange(b, units, e.Offset, eEnd, children, kind)
		}
		b.WriteString(closing)
		cursor = eEnd
	}
	b.WriteString(escapeSegment(units[cursor:end], parent))
}

func escapeSegment(units []uint16, entityType string) string {
	if len(units) == 0 {
		return ""
	}
	s := string(utf16.Decode(units))
	if entityType == "code" || entityType == "pre" {
		return EscapeV2Code(s)
	}
	return EscapeV2(s)
}

func entityMarkers(e tele.MessageEntity) (string, string) {
	switch string(e.Type) {
	case "bold":
		return "*", "*"
	case "italic":
		return "_", "_"
	case "underline":
		return "__", "__"
	case "strikethrough":
		return "~", "~"
	case "spoiler":
		return "||", "||"
	case "code":
		return "`", "`"
	case "pre":
		if e.Language != "" {
			return "```" + e.Language + "\n", "\n```"
		}
		return "```", "```"
	case "text_link":
		return "[", "](" + EscapeV2URL(e.URL) + ")"
	case "text_mention":
		if e.User != nil {
			return "[", "](tg://user?id=" + strconv.FormatInt(e.User.ID, 10) + ")"
		}
	case "custom_emoji":
		if e.CustomEmojiID != "" {
			return "![", "](tg://emoji?id=" + e.CustomEmojiID + ")"
		}
	}
	return "", ""
}
