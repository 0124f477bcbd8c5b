// Package lcd drives a 16x2 HD44780 character display through a PCF8574
// I2C backpack, with abstraction for testing.
package lcd

// Display writes text to a two-row character display.
type Display interface {
	// WriteLine writes text at the start of row (0 or 1). Callers pass
	// exactly Width characters so earlier content is overwritten.
	WriteLine(row int, text string) error

	// Clear blanks the display.
	Clear() error

	// Close turns the backlight off and releases the bus.
	Close() error
}

// Geometry and defaults.
const (
	Width          = 16
	Rows           = 2
	DefaultBus     = "/dev/i2c-1"
	DefaultAddress = 0x27
)
