package export

import (
	"strconv"
	"strings"
)

// csvHeader is the fixed column order of the CSV export
var csvHeader = []string{
	"ID", "Title", "Description", "Category", "Difficulty",
	"Status", "Progress%", "Deadline", "DaysLeft", "Notes",
}

// MarshalCSV renders the document's technology records as CSV. Text
// columns are always quote-wrapped with internal quotes doubled; absent
// optional values render as empty strings.
func MarshalCSV(doc Document) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(csvHeader, ","))
	b.WriteByte('\n')

	for i, t := range doc.Technologies {
		row := []string{
			csvQuote(strconv.FormatInt(t.ID, 10)),
			csvQuote(t.Title),
			csvQuote(t.Description),
			csvQuote(t.Category),
			csvQuote(t.Difficulty),
			csvQuote(string(t.Status)),
			optInt(t.Progress),
			t.Deadline,
			optInt(t.DaysLeft),
			csvQuote(t.Notes),
		}
		b.WriteString(strings.Join(row, ","))
		if i < len(doc.Technologies)-1 {
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

// csvQuote wraps a value in double quotes, doubling any internal quotes
func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// optInt renders an optional numeric column; absent and zero values both
// render empty, matching the reference output.
func optInt(v *int) string {
	if v == nil || *v == 0 {
		return ""
	}
	return strconv.Itoa(*v)
}
