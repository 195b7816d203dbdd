package wizard

import "github.com/vidstamp/watermark-bot/internal/transport"

// Option is one selectable wizard choice. Labels are what the user sees on a
// button; values are what the state machine stores. Values are unique within
// a set.
type Option struct {
	Label string
	Value string
}

// Options holds the supported vocabularies for the three selection steps.
type Options struct {
	Colors    []Option
	Positions []Option
	Fonts     []Option
}

// DefaultOptions returns the built-in vocabularies: 7 colors, 5 positions and
// 5 fonts.
func DefaultOptions() Options {
	return Options{
		Colors: []Option{
			{Label: "🔴 Red", Value: "red"},
			{Label: "🔵 Blue", Value: "blue"},
			{Label: "🟢 Green", Value: "green"},
			{Label: "⚪ White", Value: "white"},
			{Label: "⚫ Black", Value: "black"},
			{Label: "🟡 Yellow", Value: "yellow"},
			{Label: "🟣 Purple", Value: "purple"},
		},
		Positions: []Option{
			{Label: "⬆️ Top", Value: "top"},
			{Label: "⬇️ Bottom", Value: "bottom"},
			{Label: "⬅️ Left", Value: "left"},
			{Label: "➡️ Right", Value: "right"},
			{Label: "⏺ Center", Value: "center"},
		},
		Fonts: []Option{
			{Label: "🅰️ Arial", Value: "Arial"},
			{Label: "🅱️ Bahnschrift", Value: "Bahnschrift"},
			{Label: "🅲️ Calibri", Value: "Calibri"},
			{Label: "🅳️ David", Value: "David"},
			{Label: "🅴️ Ebrima", Value: "Ebrima"},
		},
	}
}

// ColorKeyboard lays colors out two per row.
func (o Options) ColorKeyboard() transport.Keyboard {
	return keyboard(o.Colors, 2)
}

// PositionKeyboard lays positions out three per row.
func (o Options) PositionKeyboard() transport.Keyboard {
	return keyboard(o.Positions, 3)
}

// FontKeyboard lays fonts out three per row.
func (o Options) FontKeyboard() transport.Keyboard {
	return keyboard(o.Fonts, 3)
}

func keyboard(opts []Option, perRow int) transport.Keyboard {
	var kb transport.Keyboard
	for i := 0; i < len(opts); i += perRow {
		end := min(i+perRow, len(opts))
		row := make([]transport.Button, 0, end-i)
		for _, opt := range opts[i:end] {
			row = append(row, transport.Button{Label: opt.Label, Value: opt.Value})
		}
		kb = append(kb, row)
	}

	return kb
}

func contains(opts []Option, value string) bool {
	for _, opt := range opts {
		if opt.Value == value {
			return true
		}
	}

	return false
}
