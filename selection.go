package scrollwindow

import "fmt"

// Order is the direction a Selection's continuation query is sorted in.
// DESC (newest first) is used for Live and Backward; ASC (oldest first)
// is used for Forward.
type Order int

const (
	Desc Order = iota
	Asc
)

func (o Order) String() string {
	if o == Asc {
		return "ASC"
	}
	return "DESC"
}

// Predicate is an opaque, serializable query predicate. The core never
// interprets it beyond String(); Matches exists only so a reference
// query engine (see package queryengine) can evaluate it against an
// in-memory dataset — the core itself never calls Matches.
type Predicate interface {
	String() string
	Matches(timestamp int64) bool
}

type alwaysPredicate struct{}

func (alwaysPredicate) String() string          { return "TRUE" }
func (alwaysPredicate) Matches(int64) bool { return true }

// Always returns the base predicate used when the caller supplies none:
// it matches every item and serializes to the literal "TRUE".
func Always() Predicate { return alwaysPredicate{} }

// Selection is the immutable, serializable continuation query a
// ScrollManager hands to the query engine: (base predicate AND cursor)
// ORDER BY timestamp_field <dir> LIMIT n. It is always a pure function
// of (base predicate, mode, cursor, window size, tie-break) — building
// one never has a side effect.
type Selection struct {
	Predicate      Predicate
	TimestampField string
	Cursor         *int64 // nil for Live (no cursor clause)
	CursorOp       string // "<=" for Backward, ">=" for Forward
	Order          Order
	Limit          int
	TieBreak       string // optional secondary ORDER BY clause, appended verbatim
}

// BuildSelection produces the Selection for the given mode, per the
// selection builder's table:
//
//	Mode      Cursor                    Order  Limit
//	Live      none                      DESC   live_window
//	Backward  timestamp <= cursor_ts    DESC   window_size
//	Forward   timestamp >= cursor_ts    ASC    window_size
//
// cursor is ignored for Live.
func BuildSelection(mode ScrollMode, base Predicate, tsField string, cursor *int64, limit int, tieBreak string) Selection {
	sel := Selection{
		Predicate:      base,
		TimestampField: tsField,
		Limit:          limit,
		TieBreak:       tieBreak,
	}
	switch mode {
	case Backward:
		sel.Order = Desc
		sel.Cursor = cursor
		sel.CursorOp = "<="
	case Forward:
		sel.Order = Asc
		sel.Cursor = cursor
		sel.CursorOp = ">="
	default: // Live
		sel.Order = Desc
	}
	return sel
}

// String serializes the selection for diagnostics and tests:
//
//	<base_predicate> AND "<ts_field>" <op> <cursor> ORDER BY <ts_field> <DIR> LIMIT <n>
//
// The cursor clause is omitted in Live mode. A non-empty TieBreak is
// appended after <DIR> as ", <tie_break>". This exact form is pinned
// by tests — do not reformat.
func (s Selection) String() string {
	base := s.Predicate.String()
	if s.Cursor != nil {
		base = fmt.Sprintf(`%s AND "%s" %s %d`, base, s.TimestampField, s.CursorOp, *s.Cursor)
	}
	order := fmt.Sprintf("%s %s", s.TimestampField, s.Order)
	if s.TieBreak != "" {
		order += ", " + s.TieBreak
	}
	return fmt.Sprintf("%s ORDER BY %s LIMIT %d", base, order, s.Limit)
}
