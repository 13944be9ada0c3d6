package economics

import (
	"math"
	"strconv"
)

// NotApplicableText is the cell text of a Result without a value
const NotApplicableText = "N/A"

// Default units for dimensions extracted without a unit tag
const (
	DefaultWidthUnit  = "mm"
	DefaultLengthUnit = "m"
)

// PriceQuantity is a price for an amount of some sale unit
type PriceQuantity struct {
	Value    float64  `json:"value"`
	Currency string   `json:"currency"`
	Unit     SaleUnit `json:"unit"`
	Amount   float64  `json:"amount"`
}

// Result is a price per square metre in EUR, or not applicable
type Result struct {
	value float64
	ok    bool
}

// Applicable wraps a computed value
func Applicable(v float64) Result {
	return Result{value: v, ok: true}
}

// NotApplicable is the result for items whose price per area is undefined
func NotApplicable() Result {
	return Result{}
}

// Value returns the EUR per square metre and whether it is defined
func (r Result) Value() (float64, bool) {
	return r.value, r.ok
}

// IsApplicable reports whether the result carries a value
func (r Result) IsApplicable() bool {
	return r.ok
}

// String returns the value in shortest decimal form or N/A
func (r Result) String() string {
	if !r.ok {
		return NotApplicableText
	}
	return strconv.FormatFloat(r.value, 'f', -1, 64)
}

// PricePerArea returns the EUR price of one square metre of tape.
//
// Width and length are converted to metres (width defaults to mm, length to
// m). A per-unit price covers amount rolls of the given length; a per-length
// price covers amount metres or millimetres directly.
func PricePerArea(price PriceQuantity, width, length Dimension) Result {
	if !positive(price.Value) || !positive(price.Amount) {
		return NotApplicable()
	}

	widthM, ok := width.Meters(DefaultWidthUnit)
	if !ok || !positive(widthM) {
		return NotApplicable()
	}

	var totalLength float64
	switch price.Unit {
	case SaleUnitItem:
		lengthM, ok := length.Meters(DefaultLengthUnit)
		if !ok || !positive(lengthM) {
			return NotApplicable()
		}
		totalLength = price.Amount * lengthM
	case SaleUnitMeters:
		totalLength = price.Amount
	case SaleUnitMillimeters:
		totalLength = price.Amount / 1000
	default:
		return NotApplicable()
	}

	area := totalLength * widthM
	if !positive(area) {
		return NotApplicable()
	}
	result := price.Value / area
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return NotApplicable()
	}
	return Applicable(result)
}

func positive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0)
}
