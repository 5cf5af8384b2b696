package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Output formats understood by NewRowWriter.
const (
	FormatCSV  = "csv"
	FormatJSON = "jsonl"
)

const csvDelimiter = ';'

var ErrUnknownWriterFormat = errors.New("export: unknown output format")

// RowWriter receives normalized rows and flushes them to an output file.
type RowWriter interface {
	Write(rows []*Row) error
	// Flush writes the buffered output and returns the written file path.
	Flush() (string, error)
}

// NewRowWriter creates a writer for the format targeting <dir>/<name>.<ext>.
func NewRowWriter(format, dir, name string) (RowWriter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatCSV:
		return NewCSVWriter(filepath.Join(dir, name+".csv")), nil
	case FormatJSON, "json":
		return NewJSONLinesWriter(filepath.Join(dir, name+".jsonl")), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownWriterFormat, format)
}

// CSVWriter buffers rows until Flush so the header can hold the union of
// every row key, in first-seen order.
type CSVWriter struct {
	path    string
	headers []string
	seen    map[string]struct{}
	rows    []*Row
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path, seen: make(map[string]struct{})}
}

func (w *CSVWriter) Write(rows []*Row) error {
	for _, row := range rows {
		if row == nil {
			continue
		}
		for _, key := range row.Keys() {
			if _, ok := w.seen[key]; ok {
				continue
			}
			w.seen[key] = struct{}{}
			w.headers = append(w.headers, key)
		}
		w.rows = append(w.rows, row)
	}
	return nil
}

func (w *CSVWriter) Flush() (string, error) {
	file, err := create(w.path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	out := csv.NewWriter(file)
	out.Comma = csvDelimiter
	if err := out.Write(w.headers); err != nil {
		return "", err
	}
	record := make([]string, len(w.headers))
	for _, row := range w.rows {
		for i, key := range w.headers {
			value, ok := row.Get(key)
			if !ok {
				record[i] = ""
				continue
			}
			record[i] = cell(value)
		}
		if err := out.Write(record); err != nil {
			return "", err
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return "", err
	}
	return w.path, file.Close()
}

// JSONLinesWriter writes one JSON object per row.
type JSONLinesWriter struct {
	path string
	rows []*Row
}

func NewJSONLinesWriter(path string) *JSONLinesWriter {
	return &JSONLinesWriter{path: path}
}

func (w *JSONLinesWriter) Write(rows []*Row) error {
	for _, row := range rows {
		if row != nil {
			w.rows = append(w.rows, row)
		}
	}
	return nil
}

func (w *JSONLinesWriter) Flush() (string, error) {
	file, err := create(w.path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, row := range w.rows {
		if err := encoder.Encode(row); err != nil {
			return "", err
		}
	}
	return w.path, file.Close()
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func cell(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case bool:
		if typed {
			return "1"
		}
		return "0"
	}
	return scalar(value)
}
