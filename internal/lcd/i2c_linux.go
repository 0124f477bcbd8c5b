package lcd

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// i2cSlave is the I2C_SLAVE ioctl from linux/i2c-dev.h.
const i2cSlave = 0x0703

type i2cBus struct {
	fd int
}

// OpenI2C opens the character display at addr on the I2C adapter at path.
func OpenI2C(path string, addr int) (*HD44780, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := unix.IoctlSetInt(fd, i2cSlave, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("select i2c address %#x: %w", addr, err)
	}

	d, err := NewHD44780(&i2cBus{fd: fd})
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return d, nil
}

func (b *i2cBus) Write(p []byte) (int, error) {
	return unix.Write(b.fd, p)
}

func (b *i2cBus) Close() error {
	return unix.Close(b.fd)
}
