package export

import (
	"regexp"
	"strings"

	"sjsage522/tapeworker/internal/record"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern        = regexp.MustCompile(`<\s*/?\s*[a-zA-Z][^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// PlainText returns the text content of an HTML fragment with whitespace
// collapsed. Strings without tags are returned unchanged.
func PlainText(s string) string {
	if !tagPattern.MatchString(s) {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style").Remove()
	doc.Find("br, p, li, div, tr").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(doc.Text(), " "))
}

func plainTextRecord(rec record.Record) record.Record {
	out := make(record.Record, len(rec))
	for i, e := range rec {
		out[i] = record.Entry{Key: e.Key, Value: plainTextValue(e.Value)}
	}
	return out
}

func plainTextValue(v any) any {
	switch val := v.(type) {
	case string:
		return PlainText(val)
	case record.Record:
		return plainTextRecord(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plainTextValue(item)
		}
		return out
	default:
		return v
	}
}
