package tabular

import (
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"sjsage522/tapeworker/internal/flatten"
	"sjsage522/tapeworker/internal/record"

	"github.com/spf13/cast"
)

// RowSeparator ends every row except the last
const RowSeparator = "\n"

// Serialize renders rows as CSV text with a header row. Absent values are
// empty cells. The output has no trailing newline. An empty ColumnSet
// renders as the empty string.
func Serialize(rows []flatten.FlatRecord, cols ColumnSet) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = Write(&sb, rows, cols)
	return sb.String()
}

// Write streams the same text Serialize returns into w
func Write(w io.Writer, rows []flatten.FlatRecord, cols ColumnSet) error {
	if len(cols) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, headerLine(cols)); err != nil {
		return err
	}
	fields := make([]string, len(cols))
	for _, row := range rows {
		for i, col := range cols {
			v, ok := row.Get(col)
			if !ok {
				fields[i] = ""
				continue
			}
			fields[i] = EscapeField(Text(v))
		}
		if _, err := io.WriteString(w, RowSeparator+strings.Join(fields, ",")); err != nil {
			return err
		}
	}
	return nil
}

func headerLine(cols ColumnSet) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = EscapeField(c)
	}
	return strings.Join(names, ",")
}

// EscapeField doubles every double quote and wraps the result in quotes when
// it contains a comma, a double quote or a newline.
func EscapeField(s string) string {
	s = strings.ReplaceAll(s, `"`, `""`)
	if strings.ContainsAny(s, "\",\n") {
		return `"` + s + `"`
	}
	return s
}

// Text converts a scalar leaf to its cell text. nil becomes the empty string.
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case record.Number:
		return numberText(string(val))
	case json.Number:
		return numberText(string(val))
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatFloat(val, 64)
	case float32:
		return formatFloat(float64(val), 32)
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// numberText renders a JSON number literal in plain decimal form. Integer
// literals are kept as written so long IDs do not lose digits.
func numberText(lit string) string {
	if isInteger(lit) && lit != "-0" {
		return lit
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return lit
	}
	return formatFloat(f, 64)
}

func isInteger(lit string) bool {
	digits := strings.TrimPrefix(lit, "-")
	if digits == "" {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func formatFloat(f float64, bitSize int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}
