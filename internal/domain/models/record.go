package models

import (
	"encoding/json"
)

// Record is the storage-level representation of an entity: the JSON object
// shape shared by every collection. Typed models convert through Record at
// the store boundary so that upsert merging stays generic.
type Record map[string]interface{}

// ID returns the record's id field, or "" when absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// ToRecord converts any JSON-serializable value into a Record via a JSON
// round trip.
func ToRecord(v interface{}) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// FromRecord decodes a Record into a typed model.
func FromRecord(rec Record, dst interface{}) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

// Merge combines an existing record with an incoming one, field by field.
//
// Precedence rule: every key present in incoming overwrites the existing
// value for that key; keys absent from incoming are preserved from existing.
// The merge is shallow: nested objects are replaced wholesale, not merged.
// Neither input is mutated.
func Merge(existing, incoming Record) Record {
	merged := make(Record, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	return merged
}
