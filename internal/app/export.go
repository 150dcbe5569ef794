package app

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"

	"ketotrack/internal/domain"
)

// Export is a rendered CSV export.
type Export struct {
	Filename string
	Records  int
	Data     []byte
}

// utf8BOM makes spreadsheet apps read the file as UTF-8.
const utf8BOM = "\ufeff"

// ExportCSV renders every metric oldest first, with weights in unit. Every
// cell is quoted. It returns ErrNoData when nothing has been logged.
func (r *Repository) ExportCSV(ctx context.Context, unit domain.WeightUnit) (*Export, error) {
	list := r.DailyMetrics(ctx)
	if len(list) == 0 {
		return nil, ErrNoData
	}
	profile := r.Profile(ctx)

	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	buf.WriteString(csvLine([]string{
		"Date",
		"Glucose (mmol/L)",
		"Ketones (mmol/L)",
		"Dr. Boz Ratio",
		"Status",
		fmt.Sprintf("Weight (%s)", unit),
		"Energy (1-10)",
		"Clarity (1-10)",
		"Phase",
	}, false))

	phase := strconv.Itoa(profile.CurrentPhase)
	for i := len(list) - 1; i >= 0; i-- {
		m := list[i]
		var weight *float64
		if m.Weight != nil {
			w := math.Round(domain.FromKilograms(*m.Weight, unit)*10) / 10
			weight = &w
		}
		buf.WriteString(csvLine([]string{
			m.Date,
			formatFloat(m.Glucose),
			formatFloat(m.Ketones),
			formatFloat(m.DrBozRatio),
			domain.RatioStatus(m.DrBozRatio),
			formatFloat(weight),
			formatInt(m.Energy),
			formatInt(m.Clarity),
			phase,
		}, true))
	}

	return &Export{
		Filename: fmt.Sprintf("keto-tracker-export-%s.csv", domain.Day(r.now())),
		Records:  len(list),
		Data:     bytes.TrimSuffix(buf.Bytes(), []byte("\n")),
	}, nil
}

// csvLine encodes one record. encoding/csv only quotes when needed, so
// forced quoting is done here.
func csvLine(cells []string, quoted bool) string {
	if !quoted {
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write(cells)
		w.Flush()
		return b.String()
	}
	var b bytes.Buffer
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.Write(bytes.ReplaceAll([]byte(c), []byte(`"`), []byte(`""`)))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	return b.String()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
