package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadCSVRecords reads header-keyed records from r with the same rules as
// ReadRecords. Rows may have fewer or more fields than the header.
func ReadCSVRecords(r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var header []string
	var out []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		if header == nil {
			header = record
			if len(header) > 0 {
				header[0] = strings.TrimPrefix(header[0], "\ufeff")
			}
			continue
		}
		rec := make(map[string]string, len(header))
		for j, v := range record {
			if j >= len(header) || strings.TrimSpace(header[j]) == "" {
				continue
			}
			if v = strings.TrimSpace(v); v != "" {
				rec[strings.TrimSpace(header[j])] = v
			}
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
}
