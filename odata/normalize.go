package odata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"shopfloor/records"
)

// Normalize decodes a gateway response into an ordered record list.
// Accepted shapes:
//
//	{"d":{"results":[...]}}   OData v2 collection
//	{"d":{...}}               OData v2 single entity
//	[...]                     bare array
//	{"results":[...]}         unwrapped collection
//	{...}                     any other object is one record
//
// An empty body or null yields no records. Array elements that are not
// objects are skipped.
func Normalize(data []byte) ([]records.Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []records.Record{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	switch t := v.(type) {
	case []any:
		return fromArray(t), nil
	case map[string]any:
		if d, ok := t["d"].(map[string]any); ok {
			if results, ok := d["results"].([]any); ok {
				return fromArray(results), nil
			}
			return []records.Record{records.Record(d)}, nil
		}
		if results, ok := t["results"].([]any); ok {
			return fromArray(results), nil
		}
		return []records.Record{records.Record(t)}, nil
	default:
		return nil, fmt.Errorf("unexpected JSON %T at top level", v)
	}
}

func fromArray(items []any) []records.Record {
	out := make([]records.Record, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			out = append(out, records.Record(m))
		}
	}
	return out
}
