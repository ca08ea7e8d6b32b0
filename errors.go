package scrollwindow

import "errors"

// ErrInvalidConfig is returned from NewScrollManager when the sizing
// configuration cannot yield a usable window (see DeriveSizes).
var ErrInvalidConfig = errors.New("scrollwindow: invalid config")

// ErrAnchorLost is recorded in VisibleSet.Error (never returned to a
// caller directly) when a window replacement finds no item common with
// the previous window. It is non-fatal: the platform falls back to an
// un-anchored render.
var ErrAnchorLost = errors.New("scrollwindow: anchor lost")
