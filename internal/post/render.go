package post

import (
	"fmt"
	"unicode/utf8"

	"github.com/m3rciful/postbot/core/telegram/format"
)

// RenderCaption builds the MarkdownV2 text that goes to the channel.
func RenderCaption(d *Draft) string {
	return "*" + format.EscapeV2(d.Title) + "*\n\n" + d.Body
}

// RenderPreview builds the preview shown to the author. With markdown set the
// result is MarkdownV2 source; otherwise it is meant to be displayed verbatim.
func RenderPreview(d *Draft, markdown bool) string {
	count := fmt.Sprintf(msgMediaCount, len(d.Media))
	if markdown {
		return RenderCaption(d) + "\n\n" + format.EscapeV2(count)
	}
	return "*" + d.Title + "*\n\n" + d.Body + "\n\n" + count
}

func previewEffects(d *Draft) []Effect {
	var first Effect
	if len(d.Media) > 0 {
		first = SendMediaGroup{
			ChatID:  d.ChatID,
			Items:   cloneMedia(d.Media),
			Caption: RenderPreview(d, false),
			Markup:  MarkupNone,
		}
	} else {
		first = SendText{
			ChatID: d.ChatID,
			Text:   RenderPreview(d, true),
			Markup: MarkupMarkdownV2,
		}
	}
	return []Effect{
		first,
		SendText{
			ChatID: d.ChatID,
			Text:   msgPreviewHeader,
			Choices: []Choice{
				{Label: labelPublish, Button: ButtonPublish},
				{Label: labelEdit, Button: ButtonEdit},
				{Label: labelCancel, Button: ButtonCancel},
			},
		},
	}
}

// publishEffect builds the single effect delivered to the broadcast destination.
// Its ChatID is left zero: the Publisher owns the destination.
func publishEffect(d *Draft) Effect {
	caption := RenderCaption(d)
	if len(d.Media) == 0 {
		return SendText{Text: caption, Markup: MarkupMarkdownV2}
	}
	items := make([]MediaItem, len(d.Media))
	for i, m := range d.Media {
		items[i] = MediaItem{FileID: m.FileID, Kind: d.Kind}
	}
	return SendMediaGroup{Items: items, Caption: caption, Markup: MarkupMarkdownV2}
}

func cloneMedia(items []MediaItem) []MediaItem {
	out := make([]MediaItem, len(items))
	copy(out, items)
	return out
}

// truncate keeps s within limit runes; callback answers are limited to 200 characters.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}
