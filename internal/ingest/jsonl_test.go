package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sjsage522/tapeworker/internal/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReadSkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`{"name":"first"}`,
		`{"name":`,
		``,
		`[1,2,3]`,
		`{"name":"second"}`,
	}, "\n")

	records, err := Read(strings.NewReader(input), "test", 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	name, _ := records[1].Get("name")
	assert.Equal(t, "second", name)
}

func TestReadKeepsLoneSurrogateRecords(t *testing.T) {
	input := strings.Join([]string{
		`{"k":"\ud800"}`,
		`{"k":"a\udc00b"}`,
		`{"k\ud800":1}`,
		`{"k":["\ud800"]}`,
	}, "\n")

	records, err := Read(strings.NewReader(input), "test", 0)
	require.NoError(t, err)
	require.Len(t, records, 4)

	v, _ := records[1].Get("k")
	assert.Equal(t, "a\ufffdb", v)
	assert.Equal(t, []string{"k\ufffd"}, records[2].Keys())
}

func TestReadLimit(t *testing.T) {
	input := "{\"i\":1}\n{\"i\":2}\n{\"i\":3}\n"

	records, err := Read(strings.NewReader(input), "test", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = Read(strings.NewReader(input), "test", -1)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestReadHandlesCRLF(t *testing.T) {
	records, err := Read(strings.NewReader("{\"i\":1}\r\n{\"i\":2}\r\n"), "test", 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b_shop.jsonl", "{\"shop\":\"b\",\"i\":1}\n{\"shop\":\"b\",\"i\":2}\n")
	writeFile(t, dir, "a_shop.jsonl", "{\"shop\":\"a\",\"i\":1}\n{\"shop\":\"a\",\"i\":2}\n{\"shop\":\"a\",\"i\":3}\n")
	writeFile(t, dir, "notes.txt", "{\"shop\":\"ignored\"}\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jsonl"), 0755))

	files, err := ListFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a_shop.jsonl"), filepath.Join(dir, "b_shop.jsonl")}, files)

	records, err := ReadDir(dir, 2)
	require.NoError(t, err)
	require.Len(t, records, 4)

	var shops []any
	for _, rec := range records {
		v, _ := rec.Get("shop")
		shops = append(shops, v)
	}
	assert.Equal(t, []any{"a", "a", "b", "b"}, shops)
}

func TestReadDirMissing(t *testing.T) {
	_, err := ReadDir(filepath.Join(t.TempDir(), "missing"), 1)
	assert.Error(t, err)
}

func TestReadFiles(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "one.jsonl", "{\"i\":1}\n")
	second := writeFile(t, dir, "two.jsonl", "{\"i\":2}\n{\"i\":3}\n")

	records, err := ReadFiles([]string{second, first})
	require.NoError(t, err)
	require.Len(t, records, 3)
	v, _ := records[0].Get("i")
	assert.Equal(t, record.Number("2"), v)

	_, err = ReadFiles([]string{filepath.Join(dir, "missing.jsonl")})
	assert.Error(t, err)
}
