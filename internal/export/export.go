package export

import (
	"fmt"
	"os"
	"path/filepath"

	"sjsage522/tapeworker/internal/economics"
	"sjsage522/tapeworker/internal/flatten"
	"sjsage522/tapeworker/internal/record"
	"sjsage522/tapeworker/internal/tabular"
)

// PrivatePrefix marks bookkeeping keys added by the extraction service
const PrivatePrefix = "_"

// TapeColumns is the fixed schema of a tape listing export
var TapeColumns = tabular.Fixed(
	"_url",
	"_htmlUrl",
	"isTape",
	"brand",
	"name",
	"shopName",
	"country",
	"domain",
	"eurPerSqm",
	"sku",
	"ean",
	"categoryUrl",
	"categoryEnglishName",
	"description",
	"color",
	"material",
	"type",
	"backing",
	"temperature.0.value",
	"temperature.0.unit",
	"widthOriginal.value",
	"widthOriginal.unit",
	"widthConverted.value",
	"widthConverted.unit",
	"lengthOriginal.value",
	"lengthOriginal.unit",
	"lengthConverted.value",
	"lengthConverted.unit",
	"weightOriginal",
	"weightConverted",
	"thicknessOriginal.value",
	"thicknessOriginal.unit",
	"thicknessConverted.value",
	"thicknessConverted.unit",
	"rawWithVatProductPrice.value",
	"rawWithVatProductPrice.currency",
	"rawWithVatProductPrice.unit",
	"rawWithVatProductPrice.amount",
	"euroProductPrice.value",
	"euroProductPrice.currency",
	"euroProductPrice.unit",
	"_confidence",
)

// Options controls how records become CSV
type Options struct {
	// Columns fixes the schema. When empty the union of all rows is used.
	Columns tabular.ColumnSet
	// Order applies to an inferred union
	Order tabular.Ordering
	// StripPrivate drops top-level keys starting with PrivatePrefix
	StripPrivate bool
	// PlainText converts HTML fragments in string values to text
	PlainText bool
	// Rates, when set, adds eurPerSqm to records that lack it
	Rates economics.Rates
}

// Flatten prepares and flattens every record
func Flatten(records []record.Record, opts Options) []flatten.FlatRecord {
	rows := make([]flatten.FlatRecord, 0, len(records))
	for _, rec := range records {
		rows = append(rows, flatten.Flatten(prepare(rec, opts)))
	}
	return rows
}

// Columns returns the fixed schema or the union of rows
func Columns(rows []flatten.FlatRecord, opts Options) tabular.ColumnSet {
	if len(opts.Columns) > 0 {
		return opts.Columns
	}
	return tabular.Union(rows, opts.Order)
}

// Render flattens records and serializes them to CSV text
func Render(records []record.Record, opts Options) string {
	rows := Flatten(records, opts)
	return tabular.Serialize(rows, Columns(rows, opts))
}

// WriteCSV writes content and a final newline to path, creating parent
// directories.
func WriteCSV(path string, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func prepare(rec record.Record, opts Options) record.Record {
	if opts.Rates != nil {
		if _, ok := rec.Get(economics.FieldEurPerSqm); !ok {
			rec = economics.Annotate(rec, opts.Rates)
		}
	}
	if opts.StripPrivate {
		rec = rec.Without(PrivatePrefix)
	}
	if opts.PlainText {
		rec = plainTextRecord(rec)
	}
	return rec
}
