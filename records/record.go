package records

import (
	"encoding/json"
	"strconv"
)

// Record is one row as returned by the OData service: field name to
// decoded JSON value. No field is guaranteed to be present.
type Record map[string]any

// Text returns the field rendered as display text. Objects, arrays, null
// and missing fields report ok=false.
func (r Record) Text(field string) (string, bool) {
	if r == nil || field == "" {
		return "", false
	}
	v, ok := r[field]
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Has reports whether the field is present with a non-empty text value.
func (r Record) Has(field string) bool {
	s, ok := r.Text(field)
	return ok && s != ""
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Row is a record together with the display strings derived from it.
type Row struct {
	Record    Record
	Formatted map[string]string
}

// Cell returns the display text for a column.
func (row Row) Cell(col Column) string {
	if col.Kind == KindQuantity {
		return row.Formatted[col.Field+"Formatted"]
	}
	if s, ok := row.Formatted[col.Field+"Formatted"]; ok {
		return s
	}
	s, _ := row.Record.Text(col.Field)
	return s
}

// MarshalJSON emits the record with the derived "<Field>Formatted" keys
// merged in.
func (row Row) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(row.Record)+len(row.Formatted))
	for k, v := range row.Record {
		out[k] = v
	}
	for k, v := range row.Formatted {
		out[k] = v
	}
	return json.Marshal(out)
}
