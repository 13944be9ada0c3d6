package shop

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Catalog is the parsed shop configuration file
type Catalog struct {
	Shared   Settings        `yaml:"shared"`
	Template Template        `yaml:"template,omitempty"`
	Shops    map[string]Shop `yaml:"shops"`
}

// Load reads and validates a catalog file
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shop catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse shop catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the shared settings and every shop
func (c *Catalog) Validate() error {
	if len(c.Shops) == 0 {
		return fmt.Errorf("shop catalog has no shops")
	}
	if err := c.Shared.validate("shared"); err != nil {
		return err
	}
	for _, name := range c.Names() {
		if err := c.Shops[name].withName(name).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Names returns the shop names in sorted order
func (c *Catalog) Names() []string {
	names := lo.Keys(c.Shops)
	sort.Strings(names)
	return names
}

// Shop returns the named shop with shared settings applied
func (c *Catalog) Shop(name string) (Shop, bool) {
	s, ok := c.Shops[name]
	if !ok {
		return Shop{}, false
	}
	return s.withName(name).withDefaults(c.Shared), true
}

// Select returns the named shops, or every shop when names is empty
func (c *Catalog) Select(names []string) ([]Shop, error) {
	if len(names) == 0 {
		names = c.Names()
	}
	unknown := lo.Reject(names, func(name string, _ int) bool {
		_, ok := c.Shops[name]
		return ok
	})
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown shops: %s", strings.Join(unknown, ", "))
	}
	return lo.Map(lo.Uniq(names), func(name string, _ int) Shop {
		s, _ := c.Shop(name)
		return s
	}), nil
}

// ExtractTemplate returns the catalog template or the default tape template
func (c *Catalog) ExtractTemplate() Template {
	if !c.Template.IsZero() {
		return c.Template
	}
	return DefaultTemplate()
}

func (s Shop) withName(name string) Shop {
	s.Name = name
	return s
}

var rangePattern = regexp.MustCompile(`\{\{\s*(\d+)\s*\.\.\s*(\d+)\s*\}\}`)

// validateURLTemplate accepts absolute http(s) URLs with optional
// {{from..to}} page ranges
func validateURLTemplate(raw string) error {
	var rangeErr error
	expanded := rangePattern.ReplaceAllStringFunc(raw, func(m string) string {
		parts := rangePattern.FindStringSubmatch(m)
		from, _ := strconv.Atoi(parts[1])
		to, _ := strconv.Atoi(parts[2])
		if from > to && rangeErr == nil {
			rangeErr = fmt.Errorf("invalid page range %s in %s", m, raw)
		}
		return parts[1]
	})
	if rangeErr != nil {
		return rangeErr
	}
	if strings.Contains(expanded, "{{") || strings.Contains(expanded, "}}") {
		return fmt.Errorf("malformed URL template %s", raw)
	}
	return validateAbsoluteURL(expanded)
}

// validatePattern accepts URL patterns with :* and * wildcards
func validatePattern(pattern string) error {
	plain := strings.NewReplacer(":*", "x", "*", "x").Replace(pattern)
	if err := validateAbsoluteURL(plain); err != nil {
		return fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}
	return nil
}

func validateAbsoluteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %s: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %s must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %s has no host", raw)
	}
	return nil
}
