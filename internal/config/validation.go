package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"

	c "mooio/internal"
)

var validate = validator.New()

// Validate checks struct tags first, then the rules tags can't express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if cfg.IO.Backend == "uring" && runtime.GOOS != "linux" {
		return fmt.Errorf("io.backend: uring needs linux, running on %s", runtime.GOOS)
	}
	if cfg.IO.RingEntries&(cfg.IO.RingEntries-1) != 0 {
		return fmt.Errorf("io.ring_entries: %d is not a power of two", cfg.IO.RingEntries)
	}
	if cfg.IO.Direct && cfg.IO.ChunkSize%c.SECTOR != 0 {
		return fmt.Errorf("io.chunk_size: %d must be a multiple of 512 for direct I/O", cfg.IO.ChunkSize)
	}
	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}
