package records

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// FilterState is the set of search controls on a screen. Every part is
// optional; the displayed set is the intersection of the active ones.
type FilterState struct {
	Query          string     `json:"q,omitempty"`
	From           *time.Time `json:"from,omitempty"`
	To             *time.Time `json:"to,omitempty"`
	DocumentNumber string     `json:"doc,omitempty"`
}

// IsEmpty reports whether no control is active.
func (f FilterState) IsEmpty() bool {
	return strings.TrimSpace(f.Query) == "" && f.From == nil && f.To == nil &&
		strings.TrimSpace(f.DocumentNumber) == ""
}

// Store holds the record set fetched for one screen activation and the
// currently displayed subset. Filters are always computed from the full
// loaded set, never layered on a previous result. A Store is not safe for
// concurrent use; each activation gets its own.
type Store struct {
	screen  *Screen
	records []Record
	view    []Record
}

// NewStore creates an empty store for a screen.
func NewStore(screen *Screen) *Store {
	return &Store{screen: screen}
}

// Screen returns the screen configuration the store filters with.
func (s *Store) Screen() *Screen { return s.screen }

// Load replaces the stored set and shows all of it.
func (s *Store) Load(records []Record) {
	s.records = records
	s.view = records
}

// Records returns the full loaded set.
func (s *Store) Records() []Record { return s.records }

// View returns the currently displayed subset.
func (s *Store) View() []Record { return s.view }

// Len returns the number of displayed records.
func (s *Store) Len() int { return len(s.view) }

// FilterByText keeps records where any search field, or the rendered
// month key, contains the query case-insensitively. An empty query shows
// everything.
func (s *Store) FilterByText(query string) []Record {
	s.view = s.filter(s.textMatcher(query))
	return s.view
}

// FilterByDateRange keeps records whose start day is on or after from and
// whose end day is on or before to. A missing or unparseable date never
// excludes a record.
func (s *Store) FilterByDateRange(from, to *time.Time) []Record {
	s.view = s.filter(s.rangeMatcher(from, to))
	return s.view
}

// FilterByDocumentNumber keeps records whose document field contains the
// substring case-insensitively.
func (s *Store) FilterByDocumentNumber(substring string) []Record {
	s.view = s.filter(s.documentMatcher(substring))
	return s.view
}

// Apply shows the intersection of every active control in f.
func (s *Store) Apply(f FilterState) []Record {
	text := s.textMatcher(f.Query)
	dates := s.rangeMatcher(f.From, f.To)
	doc := s.documentMatcher(f.DocumentNumber)
	s.view = s.filter(func(r Record) bool {
		return text(r) && dates(r) && doc(r)
	})
	return s.view
}

// Rows returns the displayed records with their derived display strings.
func (s *Store) Rows() []Row {
	rows := make([]Row, 0, len(s.view))
	for _, r := range s.view {
		rows = append(rows, s.decorate(r))
	}
	return rows
}

func (s *Store) decorate(r Record) Row {
	row := Row{Record: r, Formatted: make(map[string]string)}
	if s.screen == nil {
		return row
	}
	for _, f := range s.screen.DateFields() {
		if v, ok := r.Text(f); ok && v != "" {
			row.Formatted[f+"Formatted"] = FormatLegacyDate(v)
		}
	}
	if f := s.screen.MonthField; f != "" {
		if v, ok := r.Text(f); ok && v != "" {
			row.Formatted[f+"Formatted"] = FormatMonthKey(v)
		}
	}
	if f := s.screen.QuantityField; f != "" {
		if v, ok := r.Text(f); ok && v != "" {
			unit, _ := r.Text(s.screen.UnitField)
			row.Formatted[f+"Formatted"] = FormatQuantity(v, unit)
		}
	}
	return row
}

type matcher func(Record) bool

func matchAll(Record) bool { return true }

func (s *Store) filter(keep matcher) []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) textMatcher(query string) matcher {
	query = strings.TrimSpace(query)
	if query == "" || s.screen == nil {
		return matchAll
	}
	fold := cases.Fold()
	needle := fold.String(query)
	return func(r Record) bool {
		if f := s.screen.MonthField; f != "" {
			if v, ok := r.Text(f); ok && v != "" {
				if _, _, valid := ParseMonthKey(v); valid &&
					strings.Contains(fold.String(FormatMonthKey(v)), needle) {
					return true
				}
			}
		}
		for _, f := range s.screen.SearchFields {
			v, ok := r.Text(f)
			if ok && strings.Contains(fold.String(v), needle) {
				return true
			}
		}
		return false
	}
}

func (s *Store) documentMatcher(substring string) matcher {
	substring = strings.TrimSpace(substring)
	if substring == "" || s.screen == nil {
		return matchAll
	}
	fold := cases.Fold()
	needle := fold.String(substring)
	return func(r Record) bool {
		v, ok := r.Text(s.screen.DocumentField)
		return ok && strings.Contains(fold.String(v), needle)
	}
}

func (s *Store) rangeMatcher(from, to *time.Time) matcher {
	if (from == nil && to == nil) || s.screen == nil {
		return matchAll
	}
	return func(r Record) bool {
		if from != nil {
			if d, ok := s.dayOf(r, s.screen.StartField); ok && d.Before(calendarDay(*from)) {
				return false
			}
		}
		if to != nil {
			if d, ok := s.dayOf(r, s.screen.EndField); ok && d.After(calendarDay(*to)) {
				return false
			}
		}
		return true
	}
}

func (s *Store) dayOf(r Record, field string) (time.Time, bool) {
	v, ok := r.Text(field)
	if !ok {
		return time.Time{}, false
	}
	t, ok := ParseLegacyDate(v)
	if !ok {
		return time.Time{}, false
	}
	return calendarDay(t), true
}

// calendarDay keeps the date as seen in t's own location, at UTC midnight.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
