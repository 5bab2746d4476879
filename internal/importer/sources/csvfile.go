package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"noteboard/internal/importer"
)

// ── CSV File Source ─────────────────────────────────────────
// Streams rows out of a local CSV file. Rows are read one at a time,
// so memory use is bounded by the channel buffer, not the file size.

type csvFileSource struct{}

func init() { importer.RegisterSource(&csvFileSource{}) }

func (s *csvFileSource) Spec() importer.SourceSpec {
	return importer.SourceSpec{
		Type:  "csv_file",
		Label: "CSV File",
		Icon:  "IconFileTypeCsv",
		ConfigFields: []importer.ConfigField{
			{Key: "filePath", Label: "File Path", Type: "file", Required: true, Help: "Absolute path to the CSV file"},
			{Key: "delimiter", Label: "Delimiter", Type: "string", Required: false, Default: ",", Help: "Column delimiter (default: comma)"},
			{Key: "hasHeader", Label: "Has Header", Type: "select", Required: false, Options: []string{"true", "false"}, Default: "true", Help: "Whether the first row contains column names"},
		},
	}
}

func (s *csvFileSource) Discover(ctx context.Context, cfg importer.SourceConfig) (*importer.Schema, error) {
	f, r, err := openCSV(cfg)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	headers, _, err := csvHeaders(r, wantHeader(cfg))
	if err != nil {
		return nil, err
	}

	// Cells are typed per value at read time; the declared schema
	// stays text.
	schema := &importer.Schema{Fields: make([]importer.Field, len(headers))}
	for i, h := range headers {
		schema.Fields[i] = importer.Field{Name: h, Type: "text"}
	}
	return schema, nil
}

func (s *csvFileSource) Read(ctx context.Context, cfg importer.SourceConfig) (<-chan importer.Record, <-chan error) {
	out := make(chan importer.Record, 100)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		f, r, err := openCSV(cfg)
		if err != nil {
			errCh <- err
			return
		}
		defer f.Close()

		headers, first, err := csvHeaders(r, wantHeader(cfg))
		if err != nil {
			errCh <- err
			return
		}

		emit := func(row []string) bool {
			select {
			case out <- rowRecord(headers, row):
				return true
			case <-ctx.Done():
				return false
			}
		}

		// Without a header row the first row is already data.
		if first != nil && !emit(first) {
			return
		}
		for {
			row, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errCh <- fmt.Errorf("read csv row: %w", err)
				return
			}
			if !emit(row) {
				return
			}
		}
	}()

	return out, errCh
}

func openCSV(cfg importer.SourceConfig) (*os.File, *csv.Reader, error) {
	path, _ := cfg["filePath"].(string)
	if path == "" {
		return nil, nil, fmt.Errorf("filePath is not set")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open file: %w", err)
	}

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	// Ragged rows come through; short ones just leave fields unset.
	r.FieldsPerRecord = -1
	if delim, _ := cfg["delimiter"].(string); delim != "" {
		d, _ := utf8.DecodeRuneInString(delim)
		r.Comma = d
	}
	return f, r, nil
}

// csvHeaders reads the first row and decides what the columns are
// called. When the file has no header row, that row is real data and
// is handed back so the caller can emit it.
func csvHeaders(r *csv.Reader, hasHeader bool) (headers, firstRow []string, err error) {
	row, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("empty csv file")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if hasHeader {
		return row, nil, nil
	}

	headers = make([]string, len(row))
	for i := range headers {
		headers[i] = fmt.Sprintf("col_%d", i+1)
	}
	return headers, row, nil
}

func wantHeader(cfg importer.SourceConfig) bool {
	v, _ := cfg["hasHeader"].(string)
	return strings.ToLower(v) != "false"
}

func rowRecord(headers, row []string) importer.Record {
	data := make(map[string]any, len(headers))
	for i, h := range headers {
		if i < len(row) {
			data[h] = parseCell(row[i])
		}
	}
	return importer.Record{Data: data}
}

// parseCell promotes a cell to a number or bool when it reads as one.
// Blank cells become nil so empty CSV fields don't import as "".
func parseCell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true", "yes":
		return true
	case "false", "no":
		return false
	}
	return s
}
