package publisher

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"sjsage522/tapeworker/internal/ingest"
)

// FilePublisher appends messages as lines to <dir>/<key>.jsonl
type FilePublisher struct {
	dir   string
	mu    sync.Mutex
	files map[string]*os.File
	bufs  map[string]*bufio.Writer
}

// NewFilePublisher creates the output directory and a publisher writing into it
func NewFilePublisher(dir string) (*FilePublisher, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FilePublisher{
		dir:   dir,
		files: make(map[string]*os.File),
		bufs:  make(map[string]*bufio.Writer),
	}, nil
}

// Path returns the file messages for key are written to
func (p *FilePublisher) Path(key string) string {
	return filepath.Join(p.dir, fileName(key)+ingest.Extension)
}

// Truncate empties the file for key, so a new run replaces the previous one
func (p *FilePublisher) Truncate(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.closeKey(key); err != nil {
		return err
	}
	return os.WriteFile(p.Path(key), nil, 0644)
}

// Publish appends message and a newline
func (p *FilePublisher) Publish(key string, message []byte) error {
	if len(message) == 0 || strings.ContainsAny(string(message), "\n") {
		return fmt.Errorf("message for %s must be a single non-empty line", key)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	w, err := p.writer(key)
	if err != nil {
		return err
	}
	if _, err := w.Write(message); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// Flush writes buffered lines to disk
func (p *FilePublisher) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for key, w := range p.bufs {
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to flush %s: %w", key, err)
		}
	}
	return nil
}

// Close flushes and closes all files
func (p *FilePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for key := range p.files {
		if err := p.closeKey(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (p *FilePublisher) writer(key string) (*bufio.Writer, error) {
	if w, ok := p.bufs[key]; ok {
		return w, nil
	}
	f, err := os.OpenFile(p.Path(key), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output for %s: %w", key, err)
	}
	w := bufio.NewWriter(f)
	p.files[key] = f
	p.bufs[key] = w
	return w, nil
}

// closeKey must be called with mu held
func (p *FilePublisher) closeKey(key string) error {
	f, ok := p.files[key]
	if !ok {
		return nil
	}
	flushErr := p.bufs[key].Flush()
	closeErr := f.Close()
	delete(p.files, key)
	delete(p.bufs, key)
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

// fileName keeps keys from escaping the output directory
func fileName(key string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
}
