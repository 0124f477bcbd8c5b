package logic

import (
	"fmt"
	"strings"
)

// DisplayWidth is the number of characters per LCD row.
const DisplayWidth = 16

// Display holds the two LCD rows, each exactly DisplayWidth characters.
type Display struct {
	Line1 string
	Line2 string
}

// Lines returns the rows in order.
func (d Display) Lines() [2]string {
	return [2]string{d.Line1, d.Line2}
}

// FormatDisplay renders the LCD rows for a reading.
func FormatDisplay(temp, hum float64, summary Summary) Display {
	return Display{
		Line1: FitLine(fmt.Sprintf("Temp:%.1fC", temp)),
		Line2: FitLine(fmt.Sprintf("Hum:%.1f%% %s", hum, summary)),
	}
}

// DisplayText is the one-line rendering shown on the web page.
func DisplayText(temp, hum float64) string {
	return fmt.Sprintf("Temp: %.1f°C | Hum: %.1f%%", temp, hum)
}

// FitLine left-justifies s in DisplayWidth characters, padding with spaces
// or truncating as needed.
func FitLine(s string) string {
	r := []rune(s)
	if len(r) >= DisplayWidth {
		return string(r[:DisplayWidth])
	}
	return s + strings.Repeat(" ", DisplayWidth-len(r))
}
