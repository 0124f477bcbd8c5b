// Package gpio drives the cooling MOSFET gate with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Output drives a single digital output line.
type Output interface {
	// Set drives the line high (on) or low (off). Setting the same
	// value repeatedly is safe.
	Set(on bool) error

	// Close drives the line low and releases GPIO resources.
	Close() error
}

// Default line (BCM numbering) and chip.
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 11 // MOSFET gate
)
