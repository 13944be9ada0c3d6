package publisher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/tapeworker/internal/ingest"
)

func TestFilePublisher(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	p, err := NewFilePublisher(dir)
	require.NoError(t, err)

	require.NoError(t, p.Publish("shop_sks", []byte(`{"name":"a"}`)))
	require.NoError(t, p.Publish("shop_sks", []byte(`{"name":"b"}`)))
	require.NoError(t, p.Publish("gd_industrie", []byte(`{"name":"c"}`)))
	require.NoError(t, p.Flush())

	data, err := os.ReadFile(filepath.Join(dir, "shop_sks.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"a\"}\n{\"name\":\"b\"}\n", string(data))

	require.NoError(t, p.Close())

	records, err := ingest.ReadDir(dir, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestFilePublisherTruncate(t *testing.T) {
	dir := t.TempDir()
	p, err := NewFilePublisher(dir)
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.Publish("a", []byte(`{"run":1}`)))
	require.NoError(t, p.Truncate("a"))
	require.NoError(t, p.Publish("a", []byte(`{"run":2}`)))
	require.NoError(t, p.Flush())

	data, err := os.ReadFile(p.Path("a"))
	require.NoError(t, err)
	assert.Equal(t, "{\"run\":2}\n", string(data))
}

func TestFilePublisherRejectsMultiline(t *testing.T) {
	p, err := NewFilePublisher(t.TempDir())
	require.NoError(t, err)
	defer p.Close()

	assert.Error(t, p.Publish("a", []byte("{}\n{}")))
	assert.Error(t, p.Publish("a", nil))
}

func TestFilePublisherPath(t *testing.T) {
	p, err := NewFilePublisher(t.TempDir())
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "_etc_passwd.jsonl", filepath.Base(p.Path("../etc/passwd")))
}

func TestFilePublisherConcurrent(t *testing.T) {
	p, err := NewFilePublisher(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Publish("shop", []byte(`{"x":1}`)))
		}()
	}
	wg.Wait()
	require.NoError(t, p.Close())

	records, err := ingest.ReadFile(p.Path("shop"), 0)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}
