package shop

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
shared:
  proxy: auto
  maxDepth: 0
  maxVisits: 200
  contentTransform: [reduce, text_only]

template:
  name: product name
  price: price with currency

shops:
  shop_sks:
    country: DE
    pattern: "https://www.shop-sks.com/3M:*"
    startUrls:
      - "https://www.shop-sks.com/3M/Einseitige-Klebebaender/?p={{0..100}}"
  gd_industrie:
    pattern: "https://www.gd-industrie.com/fr/:*/:*/"
    proxy: residential
    maxVisits: 50
    maxExtract: 10
    waitForSelector: ".product"
    startUrls:
      - "https://www.gd-industrie.com/fr/masquage-1"
`

func TestParseCatalog(t *testing.T) {
	catalog, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	assert.Equal(t, []string{"gd_industrie", "shop_sks"}, catalog.Names())

	sks, ok := catalog.Shop("shop_sks")
	require.True(t, ok)
	assert.Equal(t, "shop_sks", sks.Name)
	assert.Equal(t, "DE", sks.Country)
	assert.Equal(t, ProxyAuto, sks.Proxy)
	require.NotNil(t, sks.MaxVisits)
	assert.Equal(t, 200, *sks.MaxVisits)
	require.NotNil(t, sks.MaxDepth)
	assert.Equal(t, 0, *sks.MaxDepth)
	assert.Equal(t, []ContentTransform{TransformReduce, TransformTextOnly}, sks.ContentTransform)
	assert.Equal(t, DefaultMaxExtract, sks.ExtractLimit())
	assert.Empty(t, sks.Extra)

	gd, ok := catalog.Shop("gd_industrie")
	require.True(t, ok)
	assert.Equal(t, ProxyResidential, gd.Proxy)
	assert.Equal(t, 50, *gd.MaxVisits)
	assert.Equal(t, 10, gd.ExtractLimit())
	assert.Equal(t, map[string]any{"waitForSelector": ".product"}, gd.Extra)

	_, ok = catalog.Shop("missing")
	assert.False(t, ok)
}

func TestCatalogTemplateKeepsFieldOrder(t *testing.T) {
	catalog, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	tmpl := catalog.ExtractTemplate()
	require.Len(t, tmpl.Fields, 2)
	assert.Equal(t, "name", tmpl.Fields[0].Name)

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"product name","price":"price with currency"}`, string(data))
}

func TestTemplatePrompt(t *testing.T) {
	catalog, err := Parse([]byte(`
template: "Extract name and price"
shops:
  a:
    pattern: "https://a.example/:*"
    startUrls: ["https://a.example/list"]
`))
	require.NoError(t, err)

	data, err := json.Marshal(catalog.ExtractTemplate())
	require.NoError(t, err)
	assert.Equal(t, `"Extract name and price"`, string(data))
}

func TestDefaultTemplate(t *testing.T) {
	catalog, err := Parse([]byte(`
shops:
  a:
    pattern: "https://a.example/:*"
    startUrls: ["https://a.example/list"]
`))
	require.NoError(t, err)

	tmpl := catalog.ExtractTemplate()
	assert.Equal(t, DefaultTemplate(), tmpl)
	assert.Equal(t, "isTape", tmpl.Fields[0].Name)

	a, _ := catalog.Shop("a")
	assert.Equal(t, ProxyAuto, a.Proxy)
}

func TestCatalogValidation(t *testing.T) {
	testCases := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "no shops",
			doc:     `shared: {proxy: auto}`,
			wantErr: "no shops",
		},
		{
			name:    "missing pattern",
			doc:     `shops: {a: {startUrls: ["https://a.example/"]}}`,
			wantErr: "pattern is required",
		},
		{
			name:    "missing start urls",
			doc:     `shops: {a: {pattern: "https://a.example/:*"}}`,
			wantErr: "start URL",
		},
		{
			name:    "relative start url",
			doc:     `shops: {a: {pattern: "https://a.example/:*", startUrls: ["/list"]}}`,
			wantErr: "http or https",
		},
		{
			name:    "reversed page range",
			doc:     `shops: {a: {pattern: "https://a.example/:*", startUrls: ["https://a.example/?p={{9..1}}"]}}`,
			wantErr: "invalid page range",
		},
		{
			name:    "broken template",
			doc:     `shops: {a: {pattern: "https://a.example/:*", startUrls: ["https://a.example/?p={{x}}"]}}`,
			wantErr: "malformed URL template",
		},
		{
			name:    "unknown proxy",
			doc:     `shops: {a: {pattern: "https://a.example/:*", startUrls: ["https://a.example/"], proxy: x}}`,
			wantErr: "unknown proxy tier",
		},
		{
			name:    "unknown shared transform",
			doc:     "shared: {contentTransform: [markdown]}\nshops: {a: {pattern: \"https://a.example/:*\", startUrls: [\"https://a.example/\"]}}",
			wantErr: "unknown content transform",
		},
		{
			name:    "negative visits",
			doc:     `shops: {a: {pattern: "https://a.example/:*", startUrls: ["https://a.example/"], maxVisits: -1}}`,
			wantErr: "maxVisits must not be negative",
		},
		{
			name:    "pattern without host",
			doc:     `shops: {a: {pattern: "https:///:*", startUrls: ["https://a.example/"]}}`,
			wantErr: "invalid pattern",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSelect(t *testing.T) {
	catalog, err := Parse([]byte(testCatalog))
	require.NoError(t, err)

	all, err := catalog.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "gd_industrie", all[0].Name)

	some, err := catalog.Select([]string{"shop_sks", "shop_sks"})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "shop_sks", some[0].Name)

	_, err = catalog.Select([]string{"shop_sks", "nope"})
	assert.EqualError(t, err, "unknown shops: nope")
}

func TestLoadRepositoryCatalog(t *testing.T) {
	catalog, err := Load(filepath.Join("..", "..", "shops.yaml"))
	require.NoError(t, err)
	assert.Contains(t, catalog.Names(), "shop_sks")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("shops: [1, 2"), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}
