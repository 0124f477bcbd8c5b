package lcd

import (
	"fmt"
	"time"
)

// Bus is a byte sink addressed to the PCF8574 expander.
type Bus interface {
	Write(p []byte) (int, error)
	Close() error
}

// PCF8574 pin mapping on the common backpack.
const (
	pinRS        = 0x01
	pinEnable    = 0x04
	pinBacklight = 0x08
)

// HD44780 instructions.
const (
	cmdClear       = 0x01
	cmdEntryMode   = 0x06 // increment, no shift
	cmdDisplayOn   = 0x0C // display on, cursor off, blink off
	cmdFunctionSet = 0x28 // 4-bit, 2 lines, 5x8
	cmdSetDDRAM    = 0x80
)

var rowOffsets = [Rows]byte{0x00, 0x40}

// HD44780 drives the display in 4-bit mode over a Bus.
type HD44780 struct {
	bus       Bus
	backlight byte
	sleep     func(time.Duration)
}

// NewHD44780 initialises the controller on bus and turns the backlight on.
func NewHD44780(bus Bus) (*HD44780, error) {
	return newHD44780(bus, time.Sleep)
}

func newHD44780(bus Bus, sleep func(time.Duration)) (*HD44780, error) {
	d := &HD44780{bus: bus, backlight: pinBacklight, sleep: sleep}
	if err := d.init(); err != nil {
		return nil, fmt.Errorf("init lcd: %w", err)
	}
	return d, nil
}

// init runs the datasheet "initialization by instruction" sequence.
func (d *HD44780) init() error {
	d.sleep(50 * time.Millisecond)
	for _, n := range []byte{0x03, 0x03, 0x03, 0x02} {
		if err := d.writeNibble(n<<4, 0); err != nil {
			return err
		}
		d.sleep(5 * time.Millisecond)
	}
	for _, c := range []byte{cmdFunctionSet, cmdDisplayOn, cmdClear, cmdEntryMode} {
		if err := d.command(c); err != nil {
			return err
		}
	}
	d.sleep(2 * time.Millisecond)
	return nil
}

// WriteLine writes text at the start of row, truncated to Width.
func (d *HD44780) WriteLine(row int, text string) error {
	if row < 0 || row >= Rows {
		return fmt.Errorf("lcd: row %d out of range", row)
	}
	if err := d.command(cmdSetDDRAM | rowOffsets[row]); err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	n := 0
	for _, r := range text {
		if n == Width {
			break
		}
		if err := d.write(charCode(r), pinRS); err != nil {
			return fmt.Errorf("write char: %w", err)
		}
		n++
	}
	return nil
}

// Clear blanks the display.
func (d *HD44780) Clear() error {
	if err := d.command(cmdClear); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	d.sleep(2 * time.Millisecond)
	return nil
}

// Close turns the backlight off and closes the bus.
func (d *HD44780) Close() error {
	d.backlight = 0
	_, err := d.bus.Write([]byte{0})
	if cerr := d.bus.Close(); err == nil {
		err = cerr
	}
	return err
}

func (d *HD44780) command(c byte) error {
	return d.write(c, 0)
}

func (d *HD44780) write(b, mode byte) error {
	if err := d.writeNibble(b&0xF0, mode); err != nil {
		return err
	}
	return d.writeNibble((b<<4)&0xF0, mode)
}

// writeNibble clocks the high four bits of n into the controller.
func (d *HD44780) writeNibble(n, mode byte) error {
	v := n | mode | d.backlight
	_, err := d.bus.Write([]byte{v | pinEnable, v})
	return err
}

// charCode maps a rune to the A00 character ROM.
func charCode(r rune) byte {
	switch {
	case r == '°':
		return 0xDF
	case r >= 0x20 && r < 0x7F:
		return byte(r)
	default:
		return '?'
	}
}
