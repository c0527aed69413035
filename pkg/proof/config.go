package proof

import (
	"io"
	"os"

	"github.com/gardar/ticketseries/pkg/artwork"
)

// Config holds options for proof output.
type Config struct {
	Debug       bool      // Outline slot boxes and tickets in red
	Outlines    bool      // Draw the ticket region outline on every ticket
	LayerName   string    // Base name of the ticket layer (page number will be appended)
	Compress    bool      // Compress PDF content streams
	LogWarnings bool      // Whether to print warnings
	Logger      io.Writer // Custom logger for warnings (nil = stdout)

	// Source is an optional source PDF. Page SourcePage of it is drawn
	// behind every ticket, cropped to the ticket region.
	Source     []byte
	SourcePage int

	// Lock is the locked placement of SVG artwork. Slot positions and glyph
	// sizes are taken relative to it; nil means the artwork fills the page.
	Lock *artwork.Lock
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Outlines:    true,
		LayerName:   "Tickets", // Will be formatted as "Tickets (Page X)" in the final PDF
		Compress:    true,
		LogWarnings: true,
		SourcePage:  1,
	}
}

func getLogger(cfg Config) io.Writer {
	if cfg.Logger == nil {
		return os.Stdout
	}
	return cfg.Logger
}
