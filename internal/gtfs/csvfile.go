package gtfs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// StreamFile reads a GTFS csv file and calls fn with each data row as a
// column-name to value map. The header row names the columns; rows may be
// ragged. Returns the number of rows handed to fn. A csv parse error is
// returned to the caller, it is not skipped.
func StreamFile(path string, fn func(row map[string]string) error) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("gtfs: open %s: %w", path, err)
	}
	defer f.Close()
	return Stream(f, fn)
}

// Stream is StreamFile over an arbitrary reader.
func Stream(r io.Reader, fn func(row map[string]string) error) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("gtfs: read header: %w", err)
	}
	idx := headerIndex(header)

	count := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("gtfs: read row %d: %w", count+2, err)
		}
		row := make(map[string]string, len(idx))
		for name, pos := range idx {
			if pos < len(record) {
				row[name] = record[pos]
			}
		}
		if err := fn(row); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, field := range header {
		idx[strings.TrimSpace(strings.ToLower(field))] = i
	}
	return idx
}
