// Package export writes the people-with-company view to spreadsheets and
// reads profile sheets and CSV files back for import.
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leads-cli/internal/model"
)

// SheetName is the name of the sheet WriteXLSX creates.
const SheetName = "People"

// Columns is the header row of an exported sheet. The column names are also
// accepted by ReadRecords, so an export can be re-imported as is.
var Columns = []string{
	"first_name",
	"last_name",
	"title",
	"profile_url",
	"location",
	"email",
	"phone",
	"website",
	"connections",
	"followers",
	"lookup_date",
	"company",
	"company_domain",
	"company_legal_form",
	"company_industries",
	"company_last_enriched_at",
	"source_name",
	"source_query",
	"created_at",
}

// Row renders one view row in Columns order.
func Row(v model.PersonView) []string {
	enriched := ""
	if v.CompanyLastEnrichedAt != nil {
		enriched = v.CompanyLastEnrichedAt.UTC().Format(time.RFC3339)
	}
	created := ""
	if !v.CreatedAt.IsZero() {
		created = v.CreatedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		v.FirstName,
		v.LastName,
		v.Title,
		v.ProfileURL,
		v.Location,
		v.Email,
		v.Phone,
		v.Website,
		count(v.Connections, v.ConnectionsFloor),
		count(v.Followers, v.FollowersFloor),
		v.LookupDate,
		v.CompanyName,
		v.CompanyDomain,
		v.CompanyLegalForm,
		strings.Join(v.CompanyIndustries, "; "),
		enriched,
		v.SourceName,
		v.SourceQuery,
		created,
	}
}

func count(n *int, floor bool) string {
	if n == nil {
		return ""
	}
	s := strconv.Itoa(*n)
	if floor {
		s += "+"
	}
	return s
}

// WriteXLSX writes a header row and one row per view row to a new workbook
// at path. An existing file is overwritten.
func WriteXLSX(path string, rows []model.PersonView) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	addRow(sheet, Columns)
	for _, v := range rows {
		addRow(sheet, Row(v))
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

// ReadRecords reads the first sheet of the workbook at path. The first row
// is the header; every following non-empty row becomes a map keyed by the
// trimmed header names.
func ReadRecords(path string) ([]map[string]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("xlsx: %s has no sheets", path)
	}

	var header []string
	var out []map[string]string
	for i, row := range f.Sheets[0].Rows {
		cells := rowToStrings(row)
		if i == 0 {
			header = cells
			continue
		}
		rec := make(map[string]string, len(header))
		for j, v := range cells {
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
	return out, nil
}

func rowToStrings(row *xlsx.Row) []string {
	if row == nil {
		return nil
	}
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
