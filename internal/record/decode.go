package record

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	json "github.com/goccy/go-json"
)

var (
	// ErrInvalidJSON is returned for input that is not well-formed JSON
	ErrInvalidJSON = errors.New("invalid JSON")
	// ErrNotObject is returned when a record line holds something other than an object
	ErrNotObject = errors.New("record is not a JSON object")
)

// Decode parses one JSON object into a Record, keeping key order
func Decode(data []byte) (Record, error) {
	value, err := DecodeValue(data)
	if err != nil {
		return nil, err
	}
	rec, ok := value.(Record)
	if !ok {
		return nil, ErrNotObject
	}
	return rec, nil
}

// DecodeValue parses any JSON value into the record value model
func DecodeValue(data []byte) (any, error) {
	// jsonparser is lenient about trailing garbage and unterminated input
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	v, err := parseValue(value, dataType)
	if err != nil {
		return nil, invalid(err)
	}
	return v, nil
}

func invalid(err error) error {
	if errors.Is(err, ErrInvalidJSON) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
}

func parseValue(value []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.Object:
		return parseObject(value)
	case jsonparser.Array:
		return parseArray(value)
	case jsonparser.String:
		return parseString(value)
	case jsonparser.Number:
		return Number(value), nil
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(value)
	case jsonparser.Null:
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: unexpected value type %s", ErrInvalidJSON, dataType)
	}
}

// parseString unescapes the body of a JSON string. jsonparser refuses lone
// surrogate escapes, which are valid JSON and decode to U+FFFD.
func parseString(raw []byte) (string, error) {
	s, err := jsonparser.ParseString(raw)
	if err == nil {
		return s, nil
	}
	quoted := make([]byte, 0, len(raw)+2)
	quoted = append(quoted, '"')
	quoted = append(quoted, raw...)
	quoted = append(quoted, '"')
	if uerr := json.Unmarshal(quoted, &s); uerr != nil {
		return "", err
	}
	return s, nil
}

// parseObject keeps first-seen key order; a repeated key takes the last value.
func parseObject(data []byte) (Record, error) {
	rec := Record{}
	index := map[string]int{}
	err := jsonparser.ObjectEach(data, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		name, err := parseString(key)
		if err != nil {
			return err
		}
		v, err := parseValue(value, dataType)
		if err != nil {
			return err
		}
		if i, ok := index[name]; ok {
			rec[i].Value = v
			return nil
		}
		index[name] = len(rec)
		rec = append(rec, Entry{Key: name, Value: v})
		return nil
	})
	if err != nil {
		return nil, invalid(err)
	}
	return rec, nil
}

func parseArray(data []byte) ([]any, error) {
	items := []any{}
	var firstErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		v, err := parseValue(value, dataType)
		if err != nil {
			firstErr = err
			return
		}
		items = append(items, v)
	})
	if err != nil {
		return nil, invalid(err)
	}
	if firstErr != nil {
		return nil, invalid(firstErr)
	}
	return items, nil
}
