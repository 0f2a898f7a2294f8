// Package form holds the raw grade and metadata inputs and normalizes them
// on read.
package form

// FieldID names one form input.
type FieldID string

// Grade fields. S1..S5 are the semester averages.
const (
	S1        FieldID = "s1"
	S2        FieldID = "s2"
	S3        FieldID = "s3"
	S4        FieldID = "s4"
	S5        FieldID = "s5"
	Math      FieldID = "math"
	Language  FieldID = "language"
	Physics   FieldID = "physics"
	Chemistry FieldID = "chemistry"
	Biology   FieldID = "biology"
	Economics FieldID = "economics"
	Geography FieldID = "geography"
	History   FieldID = "history"
)

// Rank and metadata fields.
const (
	RankPercentile  FieldID = "rank_percentile"
	Program         FieldID = "program"
	Competitiveness FieldID = "competitiveness"
	Achievement     FieldID = "achievement"
	Accreditation   FieldID = "accreditation"
)

// Program values.
const (
	ProgramSaintek = "saintek"
	ProgramSoshum  = "soshum"
)

// GradeFields lists every grade input in display order.
var GradeFields = []FieldID{S1, S2, S3, S4, S5, Math, Language, Physics, Chemistry, Biology, Economics, Geography, History}

// SemesterFields are the first five grade fields.
var SemesterFields = GradeFields[:5]

// MetadataFields lists the enumerated metadata inputs.
var MetadataFields = []FieldID{Program, Competitiveness, Achievement, Accreditation}

// Choices holds the allowed values and default for each enumerated field.
var Choices = map[FieldID]struct {
	Values  []string
	Default string
}{
	Program:         {Values: []string{ProgramSaintek, ProgramSoshum}, Default: ProgramSaintek},
	Competitiveness: {Values: []string{"very", "high", "mid", "low"}, Default: "mid"},
	Achievement:     {Values: []string{"none", "school", "prov", "national"}, Default: "none"},
	Accreditation:   {Values: []string{"A", "B", "C"}, Default: "B"},
}

// IsGrade reports whether id is a grade field.
func IsGrade(id FieldID) bool {
	for _, g := range GradeFields {
		if g == id {
			return true
		}
	}
	return false
}

// IsNumeric reports whether id is read as a number.
func IsNumeric(id FieldID) bool {
	return id == RankPercentile || IsGrade(id)
}

// Known reports whether id names a form field.
func Known(id FieldID) bool {
	if IsNumeric(id) {
		return true
	}
	_, ok := Choices[id]
	return ok
}
