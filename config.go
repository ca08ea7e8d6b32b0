package scrollwindow

import (
	"fmt"
	"math"
)

// Config is the raw, caller-supplied sizing and query configuration for
// a ScrollManager. Only ViewportHeight and MinRowHeight are required;
// everything else has a sensible default.
type Config struct {
	ViewportHeight int // px, required, > 0
	MinRowHeight   int // px, required, > 0
	BufferFactor   float64 // default 2.0 if <= 0

	BasePredicate  Predicate // default Always()
	TimestampField string    // default "timestamp"
	TieBreak       string    // optional secondary ORDER BY clause, appended verbatim
}

// Sizes holds the derived, integer window sizes computed once from a
// Config by DeriveSizes.
type Sizes struct {
	ScreenItems int
	Buffer      int
	Threshold   int
	LiveWindow  int
}

// DeriveSizes turns a raw Config into the derived sizes used by the
// selection builder and the scroll-event handler:
//
//	screen_items = viewport_height / min_row_height
//	buffer       = round(screen_items * buffer_factor)
//	threshold    = screen_items
//	live_window  = screen_items + buffer
//
// It fails with ErrInvalidConfig if min_row_height is zero or
// viewport_height is smaller than min_row_height — either of which
// would yield screen_items < 1.
func DeriveSizes(cfg Config) (Sizes, error) {
	if cfg.MinRowHeight == 0 {
		return Sizes{}, fmt.Errorf("%w: min_row_height must be > 0", ErrInvalidConfig)
	}
	if cfg.ViewportHeight < cfg.MinRowHeight {
		return Sizes{}, fmt.Errorf("%w: viewport_height (%d) must be >= min_row_height (%d)", ErrInvalidConfig, cfg.ViewportHeight, cfg.MinRowHeight)
	}

	bufferFactor := cfg.BufferFactor
	if bufferFactor <= 0 {
		bufferFactor = 2.0
	}

	screenItems := cfg.ViewportHeight / cfg.MinRowHeight
	if screenItems < 1 {
		screenItems = 1
	}
	buffer := int(math.Round(float64(screenItems) * bufferFactor))
	threshold := screenItems
	liveWindow := screenItems + buffer

	return Sizes{
		ScreenItems: screenItems,
		Buffer:      buffer,
		Threshold:   threshold,
		LiveWindow:  liveWindow,
	}, nil
}

// WindowCap is the upper bound that a growing Backward/Forward window
// size is clamped to: screen_items + 2*buffer.
func (s Sizes) WindowCap() int {
	return s.ScreenItems + 2*s.Buffer
}
