package report

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrBadArchive marks an artifact that cannot be opened at all. A readable
// archive with zero data rows is not an error.
var ErrBadArchive = errors.New("unreadable report archive")

// Row is one CSV record with access by header name.
type Row struct {
	header map[string]int
	rec    []string
}

// Get returns the value of the named column. Missing column or short record
// reports false.
func (r Row) Get(col string) (string, bool) {
	i, ok := r.header[col]
	if !ok || i >= len(r.rec) {
		return "", false
	}
	return r.rec[i], true
}

// Int parses the named column as an integer, tolerating a decimal tail the
// provider sometimes emits ("3.0").
func (r Row) Int(col string) (int, error) {
	s, ok := r.Get(col)
	if !ok {
		return 0, fmt.Errorf("column %q missing", col)
	}
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		s = s[:dot]
	}
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func (r Row) Float(col string) (float64, error) {
	s, ok := r.Get(col)
	if !ok {
		return 0, fmt.Errorf("column %q missing", col)
	}
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

// Stats counts what happened to the rows of one artifact.
type Stats struct {
	Parsed  int
	Skipped int
}

// ForEachRow opens a ZIP artifact, walks every CSV entry inside, and calls
// handle once per data row. A row whose handler returns an error is skipped
// and counted, never fatal. Column positions are resolved from each entry's
// header line, not assumed.
func ForEachRow(artifact []byte, log *zap.Logger, handle func(Row) error) (Stats, error) {
	var stats Stats

	zr, err := zip.NewReader(bytes.NewReader(artifact), int64(len(artifact)))
	if err != nil {
		return stats, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if err := walkEntry(f, log, handle, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func walkEntry(f *zip.File, log *zap.Logger, handle func(Row) error, stats *Stats) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrBadArchive, f.Name, err)
	}
	defer rc.Close()

	cr := csv.NewReader(rc)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err == io.EOF {
		return nil // empty entry, nothing to decode
	}
	if err != nil {
		return fmt.Errorf("%w: header of %s: %v", ErrBadArchive, f.Name, err)
	}
	header := make(map[string]int, len(head))
	for i, name := range head {
		name = strings.TrimPrefix(name, "\uFEFF") // first entry may carry a BOM
		header[strings.TrimSpace(name)] = i
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			stats.Skipped++
			log.Debug("skipping malformed csv record", zap.String("entry", f.Name), zap.Error(err))
			continue
		}
		if err := handle(Row{header: header, rec: rec}); err != nil {
			stats.Skipped++
			log.Debug("skipping report row", zap.String("entry", f.Name), zap.Error(err))
			continue
		}
		stats.Parsed++
	}
}
