package filestore

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/petcare/catalog-api/internal/domain"
)

// The data file is CSV. The header row names one column per field. Each
// following row is one record in store order. A present value is written
// as "<kind>:<text>", kind being string, number or time, so "string:" is
// the empty string and an empty cell means the record has no such field.
// Kinds are kept per cell; one column may hold values of several kinds.

// ErrCorrupt is wrapped by decode errors.
var ErrCorrupt = errors.New("corrupt data file")

func encodeCell(v domain.Value) string {
	return v.Kind().String() + ":" + v.Text()
}

func decodeCell(cell string) (domain.Value, error) {
	name, text, ok := strings.Cut(cell, ":")
	if !ok {
		return domain.Value{}, fmt.Errorf("cell %q has no kind", cell)
	}
	kind, err := domain.ParseKind(name)
	if err != nil {
		return domain.Value{}, err
	}
	return domain.ParseValue(kind, text)
}

// columnsOf returns the union of the records' field names in first-seen
// order.
func columnsOf(records []domain.Record) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, r := range records {
		r.Range(func(k string, _ domain.Value) bool {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
			return true
		})
	}
	return cols
}

func encode(records []domain.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	cols := columnsOf(records)
	for _, c := range cols {
		if c == "" {
			return nil, domain.ErrEmptyFieldName
		}
	}
	if err := w.Write(cols); err != nil {
		return nil, err
	}

	row := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			v, ok := r.Get(c)
			if !ok {
				row[i] = ""
				continue
			}
			row[i] = encodeCell(v)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) ([]domain.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if name == "" {
			return nil, fmt.Errorf("%w: header has an empty field name", ErrCorrupt)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: header repeats field %q", ErrCorrupt, name)
		}
		seen[name] = true
	}

	var records []domain.Record
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}

		record := domain.NewRecord(len(header))
		for i, cell := range row {
			if cell == "" {
				continue
			}
			v, err := decodeCell(cell)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, field %s: %v", ErrCorrupt, line, header[i], err)
			}
			record.Set(header[i], v)
		}
		if record.ID() == "" {
			return nil, fmt.Errorf("%w: line %d has no id", ErrCorrupt, line)
		}
		records = append(records, record)
	}
	return records, nil
}
