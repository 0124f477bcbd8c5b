//go:build !linux

package lcd

import "errors"

// OpenI2C returns an error on non-Linux platforms.
func OpenI2C(path string, addr int) (*HD44780, error) {
	return nil, errors.New("lcd: i2c not supported on this platform (requires Linux)")
}
