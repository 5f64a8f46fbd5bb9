package attendance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Export layout shared with the spreadsheet writer.
const (
	ReportSheetName = "Personnel_Report"
	ReportFileName  = "High_Traffic_Personnel.xlsx"
)

// ReportHeaders are the export's column titles: name, personnel code,
// high-traffic day count, total active days.
var ReportHeaders = []string{
	"نام و نام خانوادگی",
	"کد پرسنلی",
	"تعداد روزهای با تردد بیش از حد",
	"مجموع روزهای حضور",
}

// Filter keeps the ranked people whose name or id contains term, ignoring
// case. An empty term keeps everyone.
func Filter(ranked []Ranked, term string) []Ranked {
	if term == "" {
		return ranked
	}
	needle := strings.ToLower(term)
	var out []Ranked
	for _, r := range ranked {
		if strings.Contains(strings.ToLower(r.Person.Name), needle) ||
			strings.Contains(strings.ToLower(r.Person.ID), needle) {
			out = append(out, r)
		}
	}
	return out
}

// ReportRow is one exported line.
type ReportRow struct {
	Name            string `json:"name"`
	ID              string `json:"id"`
	HighTrafficDays int    `json:"high_traffic_days"`
	ActiveDays      int    `json:"active_days"`
}

// ReportRows projects the ranking onto export rows, keeping its order.
func ReportRows(ranked []Ranked) []ReportRow {
	rows := make([]ReportRow, len(ranked))
	for i, r := range ranked {
		rows[i] = ReportRow{
			Name:            r.Person.Name,
			ID:              r.Person.ID,
			HighTrafficDays: r.HighTrafficDays,
			ActiveDays:      r.Person.ActiveDays(),
		}
	}
	return rows
}

// Share is the fraction of active days that were high traffic, rounded to
// two places.
func (r ReportRow) Share() decimal.Decimal {
	if r.ActiveDays == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.HighTrafficDays)).
		DivRound(decimal.NewFromInt(int64(r.ActiveDays)), 2)
}

// Values returns the row's cells in ReportHeaders order.
func (r ReportRow) Values() []any {
	return []any{r.Name, r.ID, r.HighTrafficDays, r.ActiveDays}
}
