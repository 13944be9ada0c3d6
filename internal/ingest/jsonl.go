package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sjsage522/tapeworker/internal/record"
	"sjsage522/tapeworker/logger"
)

// Extension marks newline-delimited JSON files
const Extension = ".jsonl"

// maxLineSize bounds a single record line
const maxLineSize = 16 * 1024 * 1024

// ReadFile reads up to limit records from a JSONL file. A limit of zero or
// less reads the whole file. Malformed lines are logged and skipped.
func ReadFile(path string, limit int) ([]record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, path, limit)
}

// Read decodes JSONL records from r. source names the input in log output.
func Read(r io.Reader, source string, limit int) ([]record.Record, error) {
	log := logger.ForComponent("ingest")

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []record.Record
	lineNo := 0
	skipped := 0
	for scanner.Scan() {
		lineNo++
		if limit > 0 && len(records) >= limit {
			break
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := record.Decode(line)
		if err != nil {
			skipped++
			log.WithError(err).Warn().
				Str("source", source).
				Int("line", lineNo).
				Msg("Skipping malformed record")
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("failed to read %s: %w", source, err)
	}

	log.WithFields(logger.Fields{
		"source":  source,
		"records": len(records),
		"skipped": skipped,
	}).Debug().Msg("Read records")

	return records, nil
}

// ReadDir reads up to limit records from every JSONL file in dir, in file
// name order.
func ReadDir(dir string, limit int) ([]record.Record, error) {
	files, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}

	var records []record.Record
	for _, file := range files {
		recs, err := ReadFile(file, limit)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// ReadFiles reads every record of the given files in order
func ReadFiles(paths []string) ([]record.Record, error) {
	var records []record.Record
	for _, path := range paths {
		recs, err := ReadFile(path, 0)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// ListFiles returns the JSONL files directly inside dir, sorted by name
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
