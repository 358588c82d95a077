package models

import (
	"encoding/json"
	"math"
)

// Record is a single schemaless document of a collection. Values are whatever
// the JSON or msgpack decoder produced, the only field the store cares about
// is the integer id.
type Record map[string]any

// Id extracts the integer identity of the record. Records read back from disk
// carry float64 numbers, freshly created ones carry int64.
func (r Record) Id() (int64, bool) {
	switch v := r[FieldId].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	}
	return 0, false
}

// Merge returns a new record with the fields of partial written over the
// fields of r. The id of r is kept regardless of what partial says.
func (r Record) Merge(partial Record) Record {
	merged := make(Record, len(r)+len(partial))
	for k, v := range r {
		merged[k] = v
	}
	for k, v := range partial {
		if k == FieldId {
			continue
		}
		merged[k] = v
	}
	return merged
}
