package keyboard

import tele "gopkg.in/telebot.v4"

// Button describes one inline callback button. Unique is the callback key
// the registry routes on; Data is an optional payload after the "|".
type Button struct {
	Text   string
	Unique string
	Data   string
}

// Grid lays buttons out left to right, perRow to a row. A perRow below one
// puts every button on its own row.
func Grid(perRow int, buttons ...Button) *tele.ReplyMarkup {
	if perRow < 1 {
		perRow = 1
	}
	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	for start := 0; start < len(buttons); start += perRow {
		end := min(start+perRow, len(buttons))
		row := make(tele.Row, 0, end-start)
		for _, b := range buttons[start:end] {
			row = append(row, markup.Data(b.Text, b.Unique, b.Data))
		}
		rows = append(rows, row)
	}
	markup.Inline(rows...)
	return markup
}

// Column puts each button on its own row.
func Column(buttons ...Button) *tele.ReplyMarkup {
	return Grid(1, buttons...)
}
