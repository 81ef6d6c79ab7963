package config

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/brodie-hale/gpusim/internal/table"
)

// LoadRowTable reads a row table file, format chosen by path's extension
// (.csv, .json, or .toml). CSV uses a header row and allows ragged rows
// (fewer fields than the header). TOML rows are read from an array of
// tables named "rows", the layout WriteRowTable produces.
func LoadRowTable(path string) (*table.RowTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading row table %q: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return parseCSVRowTable(data)
	case ".json":
		return parseMapRowTable(data, json.Unmarshal)
	case ".toml":
		return parseMapRowTable(data, func(b []byte, v any) error {
			var wrapper struct {
				Rows []map[string]any `toml:"rows"`
			}
			if _, err := toml.Decode(string(b), &wrapper); err != nil {
				return err
			}
			*v.(*[]map[string]any) = wrapper.Rows
			return nil
		})
	default:
		return nil, fmt.Errorf("config: unsupported row table extension %q", ext)
	}
}

func parseCSVRowTable(data []byte) (*table.RowTable, error) {
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1 // ragged rows allowed

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("config: parsing CSV row table: %w", err)
	}
	if len(records) == 0 {
		return table.NewEmpty(0), nil
	}

	header := records[0]
	rows := table.NewEmpty(len(records) - 1)
	for i, record := range records[1:] {
		for col, name := range header {
			if col >= len(record) {
				break // ragged row: remaining columns left unset
			}
			rows.Set(i, name, table.Parse(record[col]))
		}
	}
	return rows, nil
}

func parseMapRowTable(data []byte, unmarshal func([]byte, any) error) (*table.RowTable, error) {
	var raw []map[string]any
	if err := unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing row table: %w", err)
	}

	rows := table.NewEmpty(len(raw))
	for i, record := range raw {
		for name, v := range record {
			rows.Set(i, name, anyToValue(v))
		}
	}
	return rows, nil
}

func anyToValue(v any) table.Value {
	switch x := v.(type) {
	case string:
		return table.Parse(x)
	case int64:
		return table.Integer(x)
	case int:
		return table.Integer(int64(x))
	case float64:
		if x == float64(int64(x)) {
			return table.Integer(int64(x))
		}
		return table.Double(x)
	default:
		return table.Parse(fmt.Sprint(x))
	}
}

// WriteRowTable writes rows to path, format chosen by path's extension.
// CSV output computes the union of all columns, sorts them
// alphabetically, and writes blank cells for columns a given row lacks,
// with absent columns left blank.
func WriteRowTable(path string, rows *table.RowTable) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return writeCSVRowTable(path, rows)
	case ".json":
		return writeMapRowTable(path, rows, json.MarshalIndent)
	case ".toml":
		return writeTOMLRowTable(path, rows)
	default:
		return fmt.Errorf("config: unsupported row table extension %q", ext)
	}
}

func writeCSVRowTable(path string, rows *table.RowTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: creating row table %q: %w", path, err)
	}
	defer f.Close()

	columns := rows.Columns()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return fmt.Errorf("config: writing CSV header: %w", err)
	}
	for i := 0; i < rows.Len(); i++ {
		record := make([]string, len(columns))
		for c, name := range columns {
			if v, ok := rows.Get(i, name); ok {
				record[c] = v.String()
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("config: writing CSV row %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeMapRowTable(path string, rows *table.RowTable, marshal func(any, string, string) ([]byte, error)) error {
	records := rowsToMaps(rows)
	data, err := marshal(records, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshaling row table: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing row table %q: %w", path, err)
	}
	return nil
}

func writeTOMLRowTable(path string, rows *table.RowTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: creating row table %q: %w", path, err)
	}
	defer f.Close()

	wrapper := struct {
		Rows []map[string]any `toml:"rows"`
	}{Rows: rowsToMaps(rows)}

	enc := toml.NewEncoder(f)
	if err := enc.Encode(wrapper); err != nil {
		return fmt.Errorf("config: encoding TOML row table: %w", err)
	}
	return nil
}

func rowsToMaps(rows *table.RowTable) []map[string]any {
	columns := rows.Columns()
	records := make([]map[string]any, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		record := make(map[string]any, len(columns))
		for _, name := range columns {
			v, ok := rows.Get(i, name)
			if !ok {
				continue
			}
			switch v.Kind() {
			case table.KindInteger:
				record[name] = v.Int()
			case table.KindDouble:
				record[name] = v.Float()
			default:
				record[name] = v.Text()
			}
		}
		records[i] = record
	}
	return records
}
