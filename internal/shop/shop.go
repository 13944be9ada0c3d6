package shop

import (
	"fmt"
	"strings"
)

// ProxyTier selects the proxy pool the extraction service uses
type ProxyTier string

const (
	ProxyAuto        ProxyTier = "auto"
	ProxyNone        ProxyTier = "none"
	ProxyDatacenter  ProxyTier = "datacenter"
	ProxyResidential ProxyTier = "residential"
)

// Valid reports whether the tier is known
func (p ProxyTier) Valid() bool {
	switch p {
	case ProxyAuto, ProxyNone, ProxyDatacenter, ProxyResidential:
		return true
	default:
		return false
	}
}

// ContentTransform tells the service how to reduce a page before extraction
type ContentTransform string

const (
	TransformReduce   ContentTransform = "reduce"
	TransformTextOnly ContentTransform = "text_only"
	TransformFullHTML ContentTransform = "full_html"
	TransformSlimHTML ContentTransform = "slim_html"
)

// Valid reports whether the transform is known
func (c ContentTransform) Valid() bool {
	switch c {
	case TransformReduce, TransformTextOnly, TransformFullHTML, TransformSlimHTML:
		return true
	default:
		return false
	}
}

// DefaultMaxExtract caps the number of crawled URLs sent to extraction
const DefaultMaxExtract = 100

// Settings are the crawl options a shop may set or inherit
type Settings struct {
	Proxy            ProxyTier          `yaml:"proxy,omitempty"`
	MaxDepth         *int               `yaml:"maxDepth,omitempty"`
	MaxVisits        *int               `yaml:"maxVisits,omitempty"`
	MaxExtract       *int               `yaml:"maxExtract,omitempty"`
	ContentTransform []ContentTransform `yaml:"contentTransform,omitempty"`
}

// Shop is one e-commerce site of the catalog
type Shop struct {
	Name      string   `yaml:"-"`
	Domain    string   `yaml:"domain,omitempty"`
	Country   string   `yaml:"country,omitempty"`
	Pattern   string   `yaml:"pattern"`
	StartURLs []string `yaml:"startUrls"`
	Settings  `yaml:",inline"`
	// Extra holds unrecognised keys, passed through to the service as is
	Extra map[string]any `yaml:",inline"`
}

// withDefaults fills unset settings from shared
func (s Shop) withDefaults(shared Settings) Shop {
	if s.Proxy == "" {
		s.Proxy = shared.Proxy
	}
	if s.Proxy == "" {
		s.Proxy = ProxyAuto
	}
	if s.MaxDepth == nil {
		s.MaxDepth = shared.MaxDepth
	}
	if s.MaxVisits == nil {
		s.MaxVisits = shared.MaxVisits
	}
	if s.MaxExtract == nil {
		s.MaxExtract = shared.MaxExtract
	}
	if len(s.ContentTransform) == 0 {
		s.ContentTransform = shared.ContentTransform
	}
	return s
}

// ExtractLimit returns how many crawled URLs go to extraction
func (s Shop) ExtractLimit() int {
	if s.MaxExtract == nil {
		return DefaultMaxExtract
	}
	return *s.MaxExtract
}

// Validate checks the shop entry
func (s Shop) Validate() error {
	if strings.TrimSpace(s.Pattern) == "" {
		return fmt.Errorf("shop %s: pattern is required", s.Name)
	}
	if len(s.StartURLs) == 0 {
		return fmt.Errorf("shop %s: at least one start URL is required", s.Name)
	}
	for _, u := range s.StartURLs {
		if err := validateURLTemplate(u); err != nil {
			return fmt.Errorf("shop %s: %w", s.Name, err)
		}
	}
	if err := validatePattern(s.Pattern); err != nil {
		return fmt.Errorf("shop %s: %w", s.Name, err)
	}
	return s.Settings.validate(s.Name)
}

func (st Settings) validate(owner string) error {
	if st.Proxy != "" && !st.Proxy.Valid() {
		return fmt.Errorf("%s: unknown proxy tier %q", owner, st.Proxy)
	}
	for _, t := range st.ContentTransform {
		if !t.Valid() {
			return fmt.Errorf("%s: unknown content transform %q", owner, t)
		}
	}
	for name, v := range map[string]*int{"maxDepth": st.MaxDepth, "maxVisits": st.MaxVisits, "maxExtract": st.MaxExtract} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s: %s must not be negative", owner, name)
		}
	}
	return nil
}
