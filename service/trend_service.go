package service

import (
	"sort"
	"strconv"
	"strings"

	"github.com/labguard/labguard-backend/dto"
)

// flatRelativeChange is the relative-change threshold below which a trend
// is classified flat. Fixed heuristic with no unit awareness; tune here.
const flatRelativeChange = 0.03

// TrendService builds per-analyte time series and derived insights from an
// account's stored reports. Everything here is a pure computed view:
// rebuilt on every call, never persisted.
type TrendService struct{}

func NewTrendService() *TrendService {
	return &TrendService{}
}

// BuildTrends aggregates all reports into per-analyte ordered series.
// Reports are walked in ISO-date order; a bucket's unit comes from the
// first row carrying one; points end up sorted ascending by date, stable
// for same-date ties.
func (s *TrendService) BuildTrends(reports []dto.LabReport) map[string]dto.AnalyteTrend {
	trends := make(map[string]dto.AnalyteTrend)
	if len(reports) == 0 {
		return trends
	}

	sorted := make([]dto.LabReport, len(reports))
	copy(sorted, reports)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	for _, report := range sorted {
		for _, row := range report.Rows {
			name := strings.TrimSpace(row.Analyte)
			if name == "" {
				continue
			}
			unit := strings.TrimSpace(row.Unit)

			trend, ok := trends[name]
			if !ok {
				trend = dto.AnalyteTrend{Name: name, Unit: unit}
			} else if trend.Unit == "" && unit != "" {
				trend.Unit = unit
			}

			trend.Points = append(trend.Points, dto.TrendPoint{
				Date:    report.Date,
				Value:   row.Value,
				RefLow:  row.RefLow,
				RefHigh: row.RefHigh,
				Status:  row.Status,
			})
			trends[name] = trend
		}
	}

	for name, trend := range trends {
		sort.SliceStable(trend.Points, func(i, j int) bool {
			return trend.Points[i].Date < trend.Points[j].Date
		})
		trends[name] = trend
	}

	return trends
}

// TrendForAnalyte returns one analyte's trend by exact (trimmed) name.
func (s *TrendService) TrendForAnalyte(reports []dto.LabReport, analyteName string) (dto.AnalyteTrend, bool) {
	trend, ok := s.BuildTrends(reports)[strings.TrimSpace(analyteName)]
	return trend, ok
}

// Insight summarizes one trend: first and latest numeric value, signed
// delta, and the 3-way direction. With no numeric points the insight is
// "unknown", carrying only the latest raw point's metadata.
func (s *TrendService) Insight(trend dto.AnalyteTrend) dto.TrendInsight {
	insight := dto.TrendInsight{
		Name:      trend.Name,
		Unit:      trend.Unit,
		Direction: dto.TrendUnknown,
	}
	if len(trend.Points) == 0 {
		return insight
	}

	var numeric []dto.TrendPoint
	for _, p := range trend.Points {
		if p.Value != nil {
			numeric = append(numeric, p)
		}
	}

	if len(numeric) == 0 {
		last := trend.Points[len(trend.Points)-1]
		insight.LatestValue = last.Value
		insight.LatestDate = last.Date
		insight.RefLow = last.RefLow
		insight.RefHigh = last.RefHigh
		return insight
	}

	first := numeric[0]
	last := numeric[len(numeric)-1]

	delta := *last.Value - *first.Value
	insight.FirstValue = first.Value
	insight.FirstDate = first.Date
	insight.LatestValue = last.Value
	insight.LatestDate = last.Date
	insight.Delta = &delta
	insight.RefLow = last.RefLow
	insight.RefHigh = last.RefHigh
	insight.Direction = classifyDirection(*first.Value, delta)

	return insight
}

func classifyDirection(first, delta float64) dto.TrendDirection {
	baseline := first
	if baseline < 0 {
		baseline = -baseline
	}
	if baseline == 0 {
		baseline = 1
	}
	absDelta := delta
	if absDelta < 0 {
		absDelta = -absDelta
	}

	switch {
	case absDelta/baseline < flatRelativeChange:
		return dto.TrendFlat
	case delta > 0:
		return dto.TrendUp
	case delta < 0:
		return dto.TrendDown
	default:
		return dto.TrendFlat
	}
}

// FlattenForBot turns all reports into the flat row list the narrative
// service consumes. Source is the report's first file name, or its id.
func (s *TrendService) FlattenForBot(reports []dto.LabReport) []dto.BotRow {
	var rows []dto.BotRow
	for _, report := range reports {
		source := report.ID
		if len(report.SourceFiles) > 0 {
			source = report.SourceFiles[0]
		}
		for _, row := range report.Rows {
			name := strings.TrimSpace(row.Analyte)
			if name == "" {
				continue
			}
			rows = append(rows, dto.BotRow{
				Analyte: name,
				Value:   row.Value,
				Unit:    strings.TrimSpace(row.Unit),
				RefLow:  row.RefLow,
				RefHigh: row.RefHigh,
				Status:  row.Status,
				Date:    report.Date,
				Source:  source,
			})
		}
	}
	return rows
}

var csvHeader = []string{"Analit", "Vrijednost", "Jedinica", "Ref low", "Ref high", "Status", "Datum", "Izvor"}

// ExportCSV renders rows in display order using the boundary format: every
// field has internal double quotes doubled, and a field is wrapped in
// quotes only when it contains a comma.
func (s *TrendService) ExportCSV(rows []dto.MeasurementRow) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(csvHeader, ","))

	for _, r := range rows {
		fields := []string{
			r.Analyte,
			formatOptFloat(r.Value),
			r.Unit,
			formatOptFloat(r.RefLow),
			formatOptFloat(r.RefHigh),
			string(r.Status),
			r.ReportDate,
			r.SourceFile,
		}
		escaped := make([]string, len(fields))
		for i, f := range fields {
			f = strings.ReplaceAll(f, `"`, `""`)
			if strings.Contains(f, ",") {
				f = `"` + f + `"`
			}
			escaped[i] = f
		}
		lines = append(lines, strings.Join(escaped, ","))
	}

	return strings.Join(lines, "\n")
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
