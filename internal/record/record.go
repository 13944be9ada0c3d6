package record

import (
	"bytes"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Number holds the literal text of a JSON number so that values round-trip
// without float formatting changes.
type Number string

// String returns the literal number text
func (n Number) String() string {
	return string(n)
}

// Float64 parses the number
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// MarshalJSON writes the number text unquoted
func (n Number) MarshalJSON() ([]byte, error) {
	if n == "" {
		return []byte("null"), nil
	}
	return []byte(n), nil
}

// Entry is a single key/value pair of a Record
type Entry struct {
	Key   string
	Value any
}

// Record is a JSON object that remembers the order of its keys.
//
// Values are nil, bool, Number, string, Record or []any holding the same
// kinds.
type Record []Entry

// Get returns the value stored under key
func (r Record) Get(key string) (any, bool) {
	for _, e := range r {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Lookup walks nested records and arrays along path. Array elements are
// addressed by their decimal index.
func (r Record) Lookup(path ...string) (any, bool) {
	var current any = r
	for _, step := range path {
		switch node := current.(type) {
		case Record:
			v, ok := node.Get(step)
			if !ok {
				return nil, false
			}
			current = v
		case []any:
			idx, ok := parseIndex(step)
			if !ok || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// Set returns a record with key set to value. An existing key keeps its
// position; a new key is appended.
func (r Record) Set(key string, value any) Record {
	for i, e := range r {
		if e.Key == key {
			out := r.Clone()
			out[i].Value = value
			return out
		}
	}
	out := make(Record, len(r), len(r)+1)
	copy(out, r)
	return append(out, Entry{Key: key, Value: value})
}

// Without returns a record without the top-level keys starting with prefix
func (r Record) Without(prefix string) Record {
	out := make(Record, 0, len(r))
	for _, e := range r {
		if strings.HasPrefix(e.Key, prefix) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Keys returns the top-level keys in order
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, e := range r {
		keys[i] = e.Key
	}
	return keys
}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	copy(out, r)
	return out
}

// MarshalJSON encodes the record keeping the key order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping the key order
func (r *Record) UnmarshalJSON(data []byte) error {
	rec, err := Decode(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

func parseIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
