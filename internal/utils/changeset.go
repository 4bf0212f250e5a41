package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// ChangeSet maps a field name to its new value. It only holds fields whose
// value differs between two snapshots of the same record.
type ChangeSet map[string]any

// Empty reports whether there is nothing to submit.
func (c ChangeSet) Empty() bool {
	return len(c) == 0
}

// Fields returns the changed field names in sorted order.
func (c ChangeSet) Fields() []string {
	fields := make([]string, 0, len(c))
	for k := range c {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// missing stands for a key absent from a record.
type missing struct{}

type kind int

const (
	kindMissing kind = iota
	kindString
	kindNumber
	kindBool
	kindObject // records, arrays and null
)

func kindOf(v any) kind {
	switch v.(type) {
	case missing:
		return kindMissing
	case string:
		return kindString
	case json.Number, float64, float32, int, int32, int64:
		return kindNumber
	case bool:
		return kindBool
	default:
		return kindObject
	}
}

// coerce renders a non-object value the way a string conversion would.
// Arrays and records render as fixed tags, never as their contents.
func coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case missing:
		return "undefined"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []any:
		return "[array]"
	case map[string]any:
		return "[object]"
	default:
		return fmt.Sprint(t)
	}
}

// IsDifferent compares two decoded JSON values structurally.
//
// Values of a different type class differ. Scalars and null compare by their
// string form. Arrays differ on length or on any element at the same index.
// Records differ on key count or on any key's value. Any other pair of
// objects is considered equal.
//
// An array only compares equal to another array: null against ["null"] or
// "" against [] differ, even though their comma-joined string forms match.
func IsDifferent(a, b any) bool {
	if kindOf(a) != kindOf(b) {
		return true
	}
	if kindOf(a) != kindObject || a == nil || b == nil {
		return coerce(a) != coerce(b)
	}

	aList, aIsList := a.([]any)
	bList, bIsList := b.([]any)
	if aIsList && bIsList {
		if len(aList) != len(bList) {
			return true
		}
		for i := range aList {
			if IsDifferent(aList[i], bList[i]) {
				return true
			}
		}
		return false
	}

	aMap, aIsMap := a.(map[string]any)
	bMap, bIsMap := b.(map[string]any)
	if aIsMap && bIsMap {
		if len(aMap) != len(bMap) {
			return true
		}
		for k, av := range aMap {
			bv, ok := bMap[k]
			if !ok {
				bv = missing{}
			}
			if IsDifferent(av, bv) {
				return true
			}
		}
		return false
	}

	return false
}

// ToRecord serializes v and decodes it back as a plain record.
func ToRecord(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var record map[string]any
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("record is not a JSON object: %w", err)
	}
	return record, nil
}

// Diff returns the fields of current whose value differs from initial.
// Keys listed in exclude never appear in the result.
func Diff[T any](current, initial T, exclude ...string) (ChangeSet, error) {
	cur, err := ToRecord(current)
	if err != nil {
		return nil, err
	}
	base, err := ToRecord(initial)
	if err != nil {
		return nil, err
	}
	return DiffRecords(cur, base, exclude...), nil
}

// DiffRecords is Diff on already decoded records.
func DiffRecords(current, initial map[string]any, exclude ...string) ChangeSet {
	skip := make(map[string]struct{}, len(exclude))
	for _, k := range exclude {
		skip[k] = struct{}{}
	}

	changes := ChangeSet{}
	for key, value := range current {
		if _, ok := skip[key]; ok {
			continue
		}
		prev, ok := initial[key]
		if !ok {
			prev = missing{}
		}
		if IsDifferent(value, prev) {
			changes[key] = value
		}
	}
	// A key dropped from current was cleared.
	for key := range initial {
		if _, ok := skip[key]; ok {
			continue
		}
		if _, ok := current[key]; !ok {
			changes[key] = nil
		}
	}
	return changes
}

// Clone deep-copies a JSON-serializable value.
func Clone[T any](v T) (T, error) {
	var out T
	raw, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("failed to clone: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to clone: %w", err)
	}
	return out, nil
}

// Apply overlays fields on the JSON form of v and decodes the result as a new
// value. Fields that do not exist on T are rejected.
func Apply[T any](v T, fields map[string]any) (T, error) {
	var out T
	record, err := ToRecord(v)
	if err != nil {
		return out, err
	}
	for k, value := range fields {
		record[k] = value
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return out, fmt.Errorf("failed to encode fields: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("failed to apply fields: %w", err)
	}
	return out, nil
}
