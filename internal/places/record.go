package places

import (
	"encoding/json"
	"strconv"
	"strings"
)

// record is one provider JSON object decoded lazily, field by field, so that a
// single field of the wrong type leaves only that field empty instead of
// failing the whole record.
type record map[string]json.RawMessage

func parseRecord(raw json.RawMessage) (record, bool) {
	var r record
	if err := json.Unmarshal(raw, &r); err != nil || r == nil {
		return nil, false
	}
	return r, true
}

func (r record) present(key string) bool {
	v, ok := r[key]
	return ok && string(v) != "null"
}

// str returns a string field; numbers are accepted and rendered verbatim
// because some providers send ids as numbers.
func (r record) str(key string) (string, bool) {
	if !r.present(key) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(r[key], &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(r[key], &n); err == nil {
		return n.String(), true
	}
	return "", false
}

// float returns a numeric field; numeric strings are accepted.
func (r record) float(key string) (float64, bool) {
	if !r.present(key) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(r[key], &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(r[key], &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func (r record) int(key string) (int, bool) {
	f, ok := r.float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func (r record) bool(key string) (bool, bool) {
	if !r.present(key) {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(r[key], &b); err != nil {
		return false, false
	}
	return b, true
}

func (r record) object(key string) (record, bool) {
	if !r.present(key) {
		return nil, false
	}
	return parseRecord(r[key])
}

func (r record) list(key string) ([]json.RawMessage, bool) {
	if !r.present(key) {
		return nil, false
	}
	var l []json.RawMessage
	if err := json.Unmarshal(r[key], &l); err != nil {
		return nil, false
	}
	return l, true
}

// firstStr returns the first of keys holding a non-empty string.
func (r record) firstStr(keys ...string) string {
	for _, k := range keys {
		if s, ok := r.str(k); ok && s != "" {
			return s
		}
	}
	return ""
}

// strs returns the string values of keys, skipping absent ones.
func (r record) strs(keys ...string) []string {
	var out []string
	for _, k := range keys {
		if s, ok := r.str(k); ok {
			out = append(out, s)
		}
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}
