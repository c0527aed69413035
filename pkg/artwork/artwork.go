package artwork

import (
	"fmt"
	"io"
	"os"

	"github.com/gardar/ticketseries/pkg/geometry"
	"github.com/gardar/ticketseries/pkg/session"
)

// Config configures an Artwork.
type Config struct {
	// DocumentID keys the cached SVG source in Store.
	DocumentID string
	// Store receives the SVG source after a successful lock. Optional.
	Store session.Store
	// Frame is the page the artwork is fitted to. Zero means A4.
	Frame geometry.PageFrame

	Debug  bool
	Logger io.Writer
}

// DefaultConfig returns a configuration for an A4 page without a store.
func DefaultConfig() Config {
	return Config{Frame: geometry.A4}
}

func getLogger(cfg Config) io.Writer {
	if cfg.Logger == nil {
		return os.Stdout
	}
	return cfg.Logger
}

// Artwork is one mounted SVG artwork. It owns the lock state; nothing else
// writes it.
type Artwork struct {
	cfg    Config
	state  State
	onLock func(Lock)
}

// New returns an unlocked artwork. onLock is called once each time a new
// lock is established; it may be nil.
func New(cfg Config, onLock func(Lock)) *Artwork {
	if cfg.Frame == (geometry.PageFrame{}) {
		cfg.Frame = geometry.A4
	}
	return &Artwork{cfg: cfg, onLock: onLock}
}

// State returns the current lock state.
func (a *Artwork) State() State {
	return a.state
}

// Lock returns the current lock and whether there is one.
func (a *Artwork) Lock() (Lock, bool) {
	return a.state.Lock, a.state.Status == Locked
}

// Mount locks content. Mounting the content that is already locked returns
// the existing lock without reparsing. Different content replaces the lock.
// On error the artwork is left unlocked.
func (a *Artwork) Mount(content []byte) (Lock, error) {
	digest := DigestOf(content)
	if a.state.Status == Locked && a.state.Digest == digest {
		return a.state.Lock, nil
	}

	prepared, err := Prepare(content)
	if err != nil {
		a.state = Reduce(a.state, Failed{Err: err})
		return Lock{}, err
	}
	lock, err := ComputeLock(prepared.ViewBox.Size(), a.cfg.Frame)
	if err != nil {
		a.state = Reduce(a.state, Failed{Err: err})
		return Lock{}, err
	}
	a.state = Reduce(a.state, Loaded{Digest: digest, Prepared: prepared, Lock: lock})

	if a.cfg.Debug {
		fmt.Fprintf(getLogger(a.cfg), "[artwork] locked natural=%gx%g scale=%.6f offset=(%.3f, %.3f)\n",
			lock.NaturalSize.Width, lock.NaturalSize.Height, lock.Scale, lock.OffsetPx.X, lock.OffsetPx.Y)
	}
	if a.cfg.Store != nil && a.cfg.DocumentID != "" {
		if err := a.cfg.Store.Set(session.SVGKey(a.cfg.DocumentID), string(content)); err != nil && a.cfg.Debug {
			fmt.Fprintf(getLogger(a.cfg), "[artwork] failed to cache SVG source: %v\n", err)
		}
	}
	if a.onLock != nil {
		a.onLock(lock)
	}
	return lock, nil
}

// Unmount drops the artwork and its lock.
func (a *Artwork) Unmount() {
	a.state = Reduce(a.state, Unmounted{})
}
