package dto

// RowStatus classifies a measured value against its reference interval.
type RowStatus string

const (
	StatusBelow   RowStatus = "below"
	StatusAbove   RowStatus = "above"
	StatusInRange RowStatus = "in-range"
	StatusUnknown RowStatus = "unknown"
)

// MeasurementRow is one analyte result recovered from a report line.
// Numeric fields are pointers: nil means the token was absent or unparsable.
type MeasurementRow struct {
	Analyte    string    `json:"analyte"`
	Value      *float64  `json:"value"`
	Unit       string    `json:"unit"`
	RefLow     *float64  `json:"ref_low"`
	RefHigh    *float64  `json:"ref_high"`
	Status     RowStatus `json:"status"`
	ReportDate string    `json:"report_date,omitempty"` // dd.mm.yyyy as printed on the report
	SourceFile string    `json:"source_file,omitempty"`
	RawLine    string    `json:"raw_line,omitempty"`
}

// PersonIdentity holds the patient fields recovered from a report header.
// An empty string means the field was not found; during matching an absent
// field is compatible with anything.
type PersonIdentity struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"` // dd.mm.yyyy
	Sex         string `json:"sex"`           // single-letter code (M / Ž / Z / F)
}

// HasAny reports whether at least one identity field was extracted.
func (p PersonIdentity) HasAny() bool {
	return p.Name != "" || p.DateOfBirth != "" || p.Sex != ""
}

// LabReport is one admitted upload batch. Rows are immutable after
// admission except for explicit user edits.
type LabReport struct {
	ID          string           `json:"id"`
	Date        string           `json:"date"` // ISO yyyy-mm-dd
	SourceFiles []string         `json:"source_files"`
	Rows        []MeasurementRow `json:"rows"`
}

// TrendPoint is one dated observation inside an analyte's time series.
type TrendPoint struct {
	Date    string    `json:"date"` // ISO yyyy-mm-dd
	Value   *float64  `json:"value"`
	RefLow  *float64  `json:"ref_low"`
	RefHigh *float64  `json:"ref_high"`
	Status  RowStatus `json:"status"`
}

// AnalyteTrend is the full ordered history for one analyte. Built on demand,
// never persisted.
type AnalyteTrend struct {
	Name   string       `json:"name"`
	Unit   string       `json:"unit"`
	Points []TrendPoint `json:"points"`
}

// TrendDirection is the 3-way classification of an analyte's movement.
type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendFlat    TrendDirection = "flat"
	TrendUnknown TrendDirection = "unknown"
)

// TrendInsight summarizes an AnalyteTrend for narrative display.
// RefLow/RefHigh come from the latest point.
type TrendInsight struct {
	Name        string         `json:"name"`
	Unit        string         `json:"unit"`
	FirstValue  *float64       `json:"first_value"`
	FirstDate   string         `json:"first_date,omitempty"`
	LatestValue *float64       `json:"latest_value"`
	LatestDate  string         `json:"latest_date,omitempty"`
	Direction   TrendDirection `json:"direction"`
	Delta       *float64       `json:"delta"`
	RefLow      *float64       `json:"ref_low"`
	RefHigh     *float64       `json:"ref_high"`
}

// BotRow is the flattened record handed to the narrative-answer service.
type BotRow struct {
	Analyte string    `json:"analit"`
	Value   *float64  `json:"value"`
	Unit    string    `json:"unit"`
	RefLow  *float64  `json:"ref_low"`
	RefHigh *float64  `json:"ref_high"`
	Status  RowStatus `json:"status"`
	Date    string    `json:"date"`
	Source  string    `json:"source"`
}

// Float returns a pointer to v, for building rows in fixtures and tests.
func Float(v float64) *float64 {
	return &v
}
