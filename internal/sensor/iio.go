package sensor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sweeney/cooling-monitor/internal/logic"
)

// DefaultDevice is the sysfs directory of the first IIO device.
const DefaultDevice = "/sys/bus/iio/devices/iio:device0"

// Channel files exposed by the dht11 IIO driver, in milli-units.
const (
	tempFile     = "in_temp_input"
	humidityFile = "in_humidityrelative_input"
)

// IIOReader reads a DHT11/DHT22 through the kernel's IIO interface.
// Enable with the dht11 device-tree overlay, e.g. dtoverlay=dht11,gpiopin=4.
type IIOReader struct {
	dir string
}

// NewIIOReader creates a reader for the IIO device directory dir.
// The directory must exist and expose a temperature channel.
func NewIIOReader(dir string) (*IIOReader, error) {
	if _, err := os.Stat(filepath.Join(dir, tempFile)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFault, err)
	}
	return &IIOReader{dir: dir}, nil
}

// Read returns temperature and humidity. Each sysfs read triggers a fresh
// measurement in the driver; a timed-out or corrupt transfer is reported as
// ErrUnavailable.
func (r *IIOReader) Read() (logic.Value, logic.Value, error) {
	temp, err := r.readChannel(tempFile)
	if err != nil {
		return logic.None, logic.None, fmt.Errorf("read temperature: %w", err)
	}
	hum, err := r.readChannel(humidityFile)
	if err != nil {
		return logic.None, logic.None, fmt.Errorf("read humidity: %w", err)
	}

	if temp < MinTemperature || temp > MaxTemperature {
		return logic.None, logic.None, fmt.Errorf("%w: temperature %.1f out of range", ErrUnavailable, temp)
	}
	if hum < MinHumidity || hum > MaxHumidity {
		return logic.None, logic.None, fmt.Errorf("%w: humidity %.1f out of range", ErrUnavailable, hum)
	}

	return logic.Some(temp), logic.Some(hum), nil
}

// Close is a no-op; sysfs files are opened per read.
func (r *IIOReader) Close() error {
	return nil
}

func (r *IIOReader) readChannel(name string) (float64, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return 0, fmt.Errorf("%w: %v", ErrFault, err)
		}
		// EIO / ETIMEDOUT from the driver on a failed transfer.
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	milli, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse %s: %v", ErrUnavailable, name, err)
	}
	return float64(milli) / 1000, nil
}
