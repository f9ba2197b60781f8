package tui

import (
	"github.com/UltraBlur/Elephant-Toolkits-Open/internal/mask"
	"github.com/UltraBlur/Elephant-Toolkits-Open/pkg/timecode"
)

// field is a single-line timecode entry. Every edit is passed through the
// format mask, so text always holds the display form.
type field struct {
	text   []rune
	cursor int
}

func (f *field) String() string {
	return string(f.text)
}

func (f *field) remask(format timecode.Format, rate timecode.Rate) {
	text, cursor := mask.Apply(format, rate, string(f.text), f.cursor)
	f.text = []rune(text)
	f.cursor = cursor
}

func (f *field) insert(r []rune, format timecode.Format, rate timecode.Rate) {
	text := make([]rune, 0, len(f.text)+len(r))
	text = append(text, f.text[:f.cursor]...)
	text = append(text, r...)
	text = append(text, f.text[f.cursor:]...)
	f.text = text
	f.cursor += len(r)
	f.remask(format, rate)
}

// backspace removes the rune before the cursor. When the mask puts a
// removed separator straight back, the digit before it goes instead.
func (f *field) backspace(format timecode.Format, rate timecode.Rate) {
	if f.cursor == 0 {
		return
	}
	before := string(f.text)
	f.deleteAt(f.cursor - 1)
	f.remask(format, rate)

	if string(f.text) == before && f.cursor > 0 {
		f.deleteAt(f.cursor - 1)
		f.remask(format, rate)
	}
}

// del removes the rune under the cursor.
func (f *field) del(format timecode.Format, rate timecode.Rate) {
	if f.cursor >= len(f.text) {
		return
	}
	cursor := f.cursor
	f.text = append(f.text[:cursor:cursor], f.text[cursor+1:]...)
	f.remask(format, rate)
	f.cursor = min(cursor, len(f.text))
}

func (f *field) deleteAt(i int) {
	f.text = append(f.text[:i:i], f.text[i+1:]...)
	f.cursor = i
}

func (f *field) left() {
	if f.cursor > 0 {
		f.cursor--
	}
}

func (f *field) right() {
	if f.cursor < len(f.text) {
		f.cursor++
	}
}

func (f *field) home() { f.cursor = 0 }

func (f *field) end() { f.cursor = len(f.text) }

func (f *field) reset() {
	f.text = nil
	f.cursor = 0
}
