package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombine(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.jsonl")
	second := filepath.Join(dir, "second.jsonl")
	require.NoError(t, os.WriteFile(first, []byte("{\"_url\":\"u\",\"z\":\"<b>bold</b>\",\"a\":1}\nnot json\n"), 0644))
	require.NoError(t, os.WriteFile(second, []byte("{\"m\":{\"k\":\"v, w\"}}\n"), 0644))
	out := filepath.Join(dir, "results", "combined.csv")

	require.NoError(t, run([]string{"-strip-html", "-out", out, first, second}, io.Discard))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a,m.k,z\n1,,bold\n,\"v, w\",\n", string(data))
}

func TestCombineFirstSeen(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.jsonl")
	require.NoError(t, os.WriteFile(file, []byte("{\"z\":1,\"a\":2}\n"), 0644))
	out := filepath.Join(dir, "out.csv")

	require.NoError(t, run([]string{"-first-seen", "-out", out, file}, io.Discard))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "z,a\n1,2\n", string(data))
}

func TestCombineArguments(t *testing.T) {
	assert.Error(t, run(nil, io.Discard))
	assert.Error(t, run([]string{filepath.Join(t.TempDir(), "missing.jsonl")}, io.Discard))
}
