package economics

import "strings"

// SaleUnit tells what a price buys: discrete items or a length of tape
type SaleUnit string

const (
	SaleUnitItem        SaleUnit = "unit"
	SaleUnitMeters      SaleUnit = "meters"
	SaleUnitMillimeters SaleUnit = "millimeters"
)

// metersPerUnit converts a length unit tag to metres
var metersPerUnit = map[string]float64{
	"mm":          0.001,
	"millimeter":  0.001,
	"millimeters": 0.001,
	"millimetre":  0.001,
	"millimetres": 0.001,
	"cm":          0.01,
	"centimeter":  0.01,
	"centimeters": 0.01,
	"m":           1,
	"meter":       1,
	"meters":      1,
	"metre":       1,
	"metres":      1,
	"km":          1000,
	"in":          0.0254,
	"inch":        0.0254,
	"inches":      0.0254,
	"ft":          0.3048,
	"foot":        0.3048,
	"feet":        0.3048,
	"yd":          0.9144,
	"yard":        0.9144,
	"yards":       0.9144,
}

// Dimension is a measured length with its unit tag
type Dimension struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// Meters converts the dimension to metres. An empty unit is read as
// defaultUnit. Unknown units report false.
func (d Dimension) Meters(defaultUnit string) (float64, bool) {
	unit := strings.ToLower(strings.TrimSpace(d.Unit))
	if unit == "" {
		unit = defaultUnit
	}
	factor, ok := metersPerUnit[unit]
	if !ok {
		return 0, false
	}
	return d.Value * factor, true
}
