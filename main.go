package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	c "mooio/internal"
	"mooio/internal/config"
	"mooio/internal/fileops"
	"mooio/internal/iomgr"
)

// result is what a completion handler hands back to main.
type result struct {
	n   int
	err error
}

// waiter parks main until the handler runs. Its memory hooks come from the
// slab, so the copy buffer and any bounce buffers live there too.
type waiter struct {
	*iomgr.SlabAllocator
	ch chan result
}

func (w *waiter) Complete(n int, err error) {
	w.ch <- result{n, err}
}

func (w *waiter) wait() (int, error) {
	r := <-w.ch
	return r.n, r.err
}

func usage(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, "usage: mooio [flags] SRC DST\n")
	fs.PrintDefaults()
}

func main() {
	fs := pflag.NewFlagSet("mooio", pflag.ContinueOnError)
	config.Flags(fs)
	fs.Usage = func() { usage(fs) }
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) { os.Exit(0) }
		os.Exit(2)
	}
	if fs.NArg() != 2 {
		usage(fs)
		os.Exit(2)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.Log.SlogLevel(),
		TimeFormat: cfg.Log.TimeFormat,
		AddSource:  cfg.Log.AddSource,
	})))

	if err := run(cfg, fs.Arg(0), fs.Arg(1)); err != nil {
		slog.Error("mooio", "err", err)
		os.Exit(int(fileops.Code(err)))
	}
}

func run(cfg *config.Config, srcPath, dstPath string) error {
	var direct fileops.OpenFlags
	align := 0
	if cfg.IO.Direct {
		direct = fileops.Direct
		align = c.SECTOR
	}

	src, err := fileops.OpenScoped(srcPath, fileops.OpenExisting|fileops.AccessRead|direct, fileops.PermsNone, fileops.AttrNone)
	if err != nil { return fmt.Errorf("open %s: %w", srcPath, err) }
	defer src.Close()

	dst, err := fileops.OpenScoped(dstPath, fileops.CreateAlways|fileops.AccessWrite|direct, fileops.PermsDefault, fileops.AttrNone)
	if err != nil { return fmt.Errorf("open %s: %w", dstPath, err) }
	defer dst.Close()

	svc, err := iomgr.New(cfg.IO)
	if err != nil { return err }
	defer svc.Close()

	slab, err := iomgr.CreateSlabAllocator(cfg.IO.ChunkSize, 2)
	if err != nil { return fmt.Errorf("slab: %w", err) }
	defer slab.Close()

	w := &waiter{SlabAllocator: slab, ch: make(chan result, 1)}

	start := time.Now()
	op := startCopy(svc, src.Handle(), dst.Handle(), cfg.IO.ChunkSize, align, w)
	n, err := w.wait()
	if err != nil { return fmt.Errorf("copy: %w", err) }

	if align > 0 {
		// drop the padding of the last block
		if err := fileops.SetSize(dst.Handle(), uint64(n)); err != nil {
			return fmt.Errorf("truncate %s: %w", dstPath, err)
		}
	}

	svc.Sync(dst.Handle(), w)
	if _, err := w.wait(); err != nil { return fmt.Errorf("sync %s: %w", dstPath, err) }

	elapsed := time.Since(start)
	slog.Info("copied",
		"bytes", n,
		"xxhash", fmt.Sprintf("%016x", op.Sum64()),
		"elapsed", elapsed,
		"backend", cfg.IO.Backend,
		"slabMisses", slab.Misses(),
	)
	return nil
}
