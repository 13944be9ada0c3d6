package economics

import (
	"strconv"
	"strings"

	"sjsage522/tapeworker/internal/record"

	"github.com/spf13/cast"
)

// Field names of an extracted tape listing
const (
	FieldRawPrice        = "rawWithVatProductPrice"
	FieldEuroPrice       = "euroProductPrice"
	FieldWidthConverted  = "widthConverted"
	FieldLengthConverted = "lengthConverted"
	FieldEurPerSqm       = "eurPerSqm"
)

// Evaluate computes the price per square metre of one extracted item. The
// euro price is taken from the record or converted from the raw price.
func Evaluate(rec record.Record, rates Rates) Result {
	price, ok := EuroPrice(rec, rates)
	if !ok {
		return NotApplicable()
	}
	width, _ := dimensionAt(rec, FieldWidthConverted)
	length, _ := dimensionAt(rec, FieldLengthConverted)
	return PricePerArea(price, width, length)
}

// EuroPrice returns the item's price in EUR
func EuroPrice(rec record.Record, rates Rates) (PriceQuantity, bool) {
	if price, ok := priceAt(rec, FieldEuroPrice); ok && price.Value > 0 {
		if price.Currency == "" {
			price.Currency = Euro
		}
		return price, true
	}
	raw, ok := priceAt(rec, FieldRawPrice)
	if !ok {
		return PriceQuantity{}, false
	}
	return rates.ToEuro(raw)
}

// Annotate stores the euro price when it had to be converted and the price
// per square metre under eurPerSqm. A missing or non-positive euro price is
// replaced by the converted one. Items without a defined value get N/A.
func Annotate(rec record.Record, rates Rates) record.Record {
	if existing, ok := priceAt(rec, FieldEuroPrice); !ok || existing.Value <= 0 {
		if price, ok := EuroPrice(rec, rates); ok {
			rec = rec.Set(FieldEuroPrice, priceRecord(price))
		}
	}
	result := Evaluate(rec, rates)
	if v, ok := result.Value(); ok {
		return rec.Set(FieldEurPerSqm, formatNumber(v))
	}
	return rec.Set(FieldEurPerSqm, NotApplicableText)
}

func priceRecord(p PriceQuantity) record.Record {
	return record.Record{
		{Key: "value", Value: formatNumber(p.Value)},
		{Key: "currency", Value: p.Currency},
		{Key: "unit", Value: string(p.Unit)},
		{Key: "amount", Value: formatNumber(p.Amount)},
	}
}

func formatNumber(f float64) record.Number {
	return record.Number(strconv.FormatFloat(f, 'f', -1, 64))
}

func priceAt(rec record.Record, key string) (PriceQuantity, bool) {
	node, ok := objectAt(rec, key)
	if !ok {
		return PriceQuantity{}, false
	}
	value, ok := number(node, "value")
	if !ok {
		return PriceQuantity{}, false
	}
	amount, _ := number(node, "amount")
	return PriceQuantity{
		Value:    value,
		Currency: text(node, "currency"),
		Unit:     SaleUnit(strings.ToLower(text(node, "unit"))),
		Amount:   amount,
	}, true
}

func dimensionAt(rec record.Record, key string) (Dimension, bool) {
	node, ok := objectAt(rec, key)
	if !ok {
		return Dimension{}, false
	}
	value, ok := number(node, "value")
	if !ok {
		return Dimension{}, false
	}
	return Dimension{Value: value, Unit: text(node, "unit")}, true
}

func objectAt(rec record.Record, key string) (record.Record, bool) {
	v, ok := rec.Get(key)
	if !ok {
		return nil, false
	}
	node, ok := v.(record.Record)
	return node, ok
}

func text(node record.Record, key string) string {
	v, ok := node.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// number reads a numeric field. Extraction output sometimes carries numbers
// as strings, with a decimal comma.
func number(node record.Record, key string) (float64, bool) {
	v, ok := node.Get(key)
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case record.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(val)
		if !strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", ".")
		}
		f, err := cast.ToFloat64E(s)
		return f, err == nil
	case bool:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}
