//go:build !linux

package iomgr

import (
	"fmt"
	"runtime"

	"mooio/internal/config"
)

func createUring(cfg config.IO) (Service, error) {
	return nil, fmt.Errorf("%w: io_uring isn't available on %s", ErrBackend, runtime.GOOS)
}
