// Package sensor reads temperature and humidity with hardware abstraction.
// The real implementation uses the Linux IIO dht11 driver (which also serves
// the DHT22). The fake implementation allows testing without hardware.
package sensor

import (
	"errors"

	"github.com/sweeney/cooling-monitor/internal/logic"
)

var (
	// ErrUnavailable means no reading could be taken this tick. DHT sensors
	// fail checksum or timing regularly; the next tick is a fresh attempt.
	ErrUnavailable = errors.New("sensor: reading unavailable")

	// ErrFault means the device is missing or inaccessible.
	ErrFault = errors.New("sensor: device fault")
)

// Reader reads the environmental sensor.
type Reader interface {
	// Read returns the current temperature (°C) and relative humidity (%).
	// A failed read returns an error wrapping ErrUnavailable or ErrFault.
	Read() (temperature, humidity logic.Value, err error)

	// Close releases sensor resources.
	Close() error
}

// Plausible ranges for a DHT22. Values outside them are read glitches.
const (
	MinTemperature = -40.0
	MaxTemperature = 80.0
	MinHumidity    = 0.0
	MaxHumidity    = 100.0
)

// Classify maps a Read outcome to a tagged reading status.
func Classify(err error) logic.ReadingStatus {
	switch {
	case err == nil:
		return logic.ReadingOK
	case errors.Is(err, ErrUnavailable):
		return logic.ReadingUnavailable
	default:
		return logic.ReadingFault
	}
}
