package shop

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// TemplateField describes one output field in natural language
type TemplateField struct {
	Name        string
	Description string
}

// Template tells the extraction service what to pull from a product page.
// It is either a free-form prompt or an ordered field dictionary.
type Template struct {
	Prompt string
	Fields []TemplateField
}

// IsZero reports whether the template is empty
func (t Template) IsZero() bool {
	return t.Prompt == "" && len(t.Fields) == 0
}

// UnmarshalYAML accepts a string prompt or a mapping of field descriptions
func (t *Template) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&t.Prompt)
	case yaml.MappingNode:
		fields := make([]TemplateField, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var name, desc string
			if err := node.Content[i].Decode(&name); err != nil {
				return err
			}
			if err := node.Content[i+1].Decode(&desc); err != nil {
				return fmt.Errorf("template field %s: %w", name, err)
			}
			fields = append(fields, TemplateField{Name: name, Description: desc})
		}
		t.Fields = fields
		return nil
	default:
		return fmt.Errorf("template must be a string or a mapping, line %d", node.Line)
	}
}

// MarshalJSON encodes the prompt string or the fields as an ordered object
func (t Template) MarshalJSON() ([]byte, error) {
	if t.Prompt != "" || len(t.Fields) == 0 {
		return json.Marshal(t.Prompt)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range t.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		desc, err := json.Marshal(f.Description)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(desc)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DefaultTemplate describes a tape listing
func DefaultTemplate() Template {
	return Template{Fields: []TemplateField{
		{"isTape", "true if the product is an adhesive tape, otherwise false"},
		{"brand", "brand or manufacturer of the product"},
		{"name", "full product name as shown on the page"},
		{"sku", "shop article number or SKU"},
		{"ean", "EAN or GTIN barcode number if shown"},
		{"categoryUrl", "URL of the category page the product is listed in"},
		{"categoryEnglishName", "category name translated to English"},
		{"description", "product description, plain text"},
		{"color", "color of the tape, in English"},
		{"material", "carrier material, in English"},
		{"type", "tape type, for example masking, double-sided, duct, insulating"},
		{"backing", "adhesive type, for example acrylic, rubber, silicone"},
		{"temperature", "array of temperature ratings, each a dictionary of value and unit"},
		{"widthOriginal", "width as shown on the page, a dictionary of value and unit"},
		{"widthConverted", "width converted to millimeters, a dictionary of value and unit mm"},
		{"lengthOriginal", "roll length as shown on the page, a dictionary of value and unit"},
		{"lengthConverted", "roll length converted to meters, a dictionary of value and unit m"},
		{"weightOriginal", "weight as shown on the page"},
		{"weightConverted", "weight converted to grams"},
		{"thicknessOriginal", "thickness as shown on the page, a dictionary of value and unit"},
		{"thicknessConverted", "thickness converted to micrometers, a dictionary of value and unit"},
		{"rawWithVatProductPrice", "price including VAT as shown, a dictionary of value (decimal with two decimals), currency (ISO code), unit (one of unit, meters, millimeters) and amount (how many of that unit the price buys)"},
		{"euroProductPrice", "the same price converted to EUR, a dictionary of value, currency EUR, unit and amount"},
	}}
}
