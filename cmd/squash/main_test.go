package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSquashUnion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.jsonl"), "{\"a\":{\"b\":1},\"c\":[2,3]}\n{\"a\":{\"b\":9}}\n")
	writeFile(t, filepath.Join(dir, "b.jsonl"), "{\"a\":{\"b\":4},\"d\":\"x\"}\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	out := filepath.Join(t.TempDir(), "out.csv")

	t.Setenv("EUR_RATES", "")
	require.NoError(t, run([]string{"-union", "-out", out, "1", dir}, io.Discard))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a.b,c.0,c.1,d,eurPerSqm", lines[0])
	assert.Equal(t, "1,2,3,,N/A", lines[1])
	assert.Equal(t, "4,,,x,N/A", lines[2])
}

func TestSquashTapeColumns(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "shop.jsonl"), `{"name":"Tape","euroProductPrice":{"value":10,"currency":"EUR","unit":"unit","amount":5},"widthConverted":{"value":50,"unit":"mm"},"lengthConverted":{"value":2,"unit":"m"}}`+"\n")
	out := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, run([]string{"-out", out, "10", dir}, io.Discard))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "_url,_htmlUrl,isTape,brand,name,"))
	assert.Contains(t, lines[1], ",Tape,")
	assert.Contains(t, lines[1], ",20,")
}

func TestSquashArguments(t *testing.T) {
	assert.Error(t, run([]string{"5"}, io.Discard))
	assert.Error(t, run([]string{"zero", t.TempDir()}, io.Discard))
	assert.Error(t, run([]string{"0", t.TempDir()}, io.Discard))
	assert.Error(t, run([]string{"5", filepath.Join(t.TempDir(), "missing")}, io.Discard))
}
