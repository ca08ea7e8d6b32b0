// Package scrollwindow implements a platform-agnostic windowing state
// machine for virtually scrolled, timestamp-ordered feeds backed by a
// reactive query engine.
//
// It decides, at any moment, which contiguous slice of an ordered
// collection should be rendered and which continuation query should be
// issued next, so that bidirectional pagination feels smooth and the
// rendered list never jumps on a window change. It does not measure
// pixels, pick anchors by geometry, or talk to storage directly — those
// are the platform renderer's and the query engine's jobs.
package scrollwindow
