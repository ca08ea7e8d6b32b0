// Package feedlog renders a scrollwindow.VisibleSet as a scrollback
// view: the window's items, an edge indicator when more content exists
// above or below, and a status line reporting mode and auto-scroll
// state.
//
// Adapted from the teacher's LogC (log.go): that component tailed an
// io.Reader and tracked a "following/not following" boolean plus a
// "X new lines" counter while the user had scrolled away from the
// bottom. feedlog repurposes the same shape — a render target fed by a
// push source, with an explicit caught-up-vs-behind distinction — but
// the push source is a scrollwindow.ScrollManager's VisibleSet stream
// rather than a reader goroutine, and the "new lines" counter becomes
// the live edge indicator driven by HasMoreFollowing/ShouldAutoScroll
// rather than a locally counted line delta.
package feedlog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"scrollwindow"
)

var (
	moreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	anchorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Row renders a single item of a feed; the caller supplies it so
// feedlog never interprets item content, matching the core's
// not-interpreting-content stance.
type Row[V scrollwindow.Entity] func(item V, isAnchor bool) string

// View renders a VisibleSet into a scrollback string.
type View[V scrollwindow.Entity] struct {
	row    Row[V]
	width  int
	height int
}

// New creates a View that renders each item with row.
func New[V scrollwindow.Entity](row Row[V]) *View[V] {
	return &View[V]{row: row}
}

// SetSize sets the rendering width and the maximum number of item rows
// shown (the view never shows more rows than the VisibleSet already
// contains — the core has already done the windowing).
func (v *View[V]) SetSize(width, height int) *View[V] {
	v.width = width
	v.height = height
	return v
}

// Render produces the full scrollback view for vs: a top indicator if
// more precedes the window, the item rows, a bottom indicator if more
// follows, and a status line.
func (v *View[V]) Render(vs scrollwindow.VisibleSet[V], mode scrollwindow.ScrollMode) string {
	var b strings.Builder

	if vs.HasMorePreceding {
		b.WriteString(moreStyle.Render("^ more above"))
		b.WriteByte('\n')
	}

	anchorID := scrollwindow.EntityID("")
	if vs.Intersection != nil {
		anchorID = vs.Intersection.EntityID
	}

	rows := vs.Items
	if v.height > 0 && len(rows) > v.height {
		rows = rows[len(rows)-v.height:]
	}
	for _, item := range rows {
		line := v.row(item, item.EntityID() == anchorID)
		if item.EntityID() == anchorID {
			line = anchorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	if vs.HasMoreFollowing {
		b.WriteString(moreStyle.Render("v more below"))
		b.WriteByte('\n')
	}

	if vs.Error != "" {
		b.WriteString(errorStyle.Render("! " + vs.Error))
		b.WriteByte('\n')
	}

	b.WriteString(statusStyle.Render(v.statusLine(vs, mode)))
	return b.String()
}

func (v *View[V]) statusLine(vs scrollwindow.VisibleSet[V], mode scrollwindow.ScrollMode) string {
	autoScroll := "off"
	if vs.ShouldAutoScroll {
		autoScroll = "on"
	}
	return fmt.Sprintf("mode=%s items=%d auto-scroll=%s", mode, len(vs.Items), autoScroll)
}
