// Package validate checks a filled form before it is submitted.
package validate

import (
	"github.com/p-n-ai/unimatch/internal/form"
	"github.com/p-n-ai/unimatch/internal/i18n"
	"github.com/p-n-ai/unimatch/internal/selection"
)

// Code identifies an issue independent of locale.
type Code string

const (
	CodeNoSemesterGrade Code = "no_semester_grade"
	CodeNoUniversity    Code = "no_university"
	CodeNoMajor         Code = "no_major"
	CodeMissingMajor    Code = "missing_major"
	CodeMathRecommended Code = "math_recommended"
	CodeScienceNeeded   Code = "science_recommended"
	CodeLanguageNeeded  Code = "language_recommended"
)

// Issue is one problem found in the form. Advisory issues still block
// submission; the flag only lets a front end style them differently.
type Issue struct {
	Code       Code   `json:"code"`
	Slot       int    `json:"slot,omitempty"`
	University string `json:"university,omitempty"`
	Message    string `json:"message"`
	Advisory   bool   `json:"advisory,omitempty"`
}

// State is what the validator reads.
type State struct {
	Form  *form.Form
	Slots []selection.Slot
}

var sciences = []form.FieldID{form.Physics, form.Chemistry, form.Biology}

// Validate runs every rule and returns all issues found, in rule order.
func Validate(s State, p *i18n.Printer) []Issue {
	var issues []Issue
	add := func(code Code, advisory bool, key string, args ...any) {
		issues = append(issues, Issue{Code: code, Advisory: advisory, Message: p.Sprintf(key, args...)})
	}

	if !anyPresent(s.Form, form.SemesterFields) {
		add(CodeNoSemesterGrade, false, i18n.NeedSemesterGrade)
	}

	var hasUniversity, hasMajor bool
	for _, slot := range s.Slots {
		hasUniversity = hasUniversity || slot.University.Selected != ""
		hasMajor = hasMajor || slot.Major.Selected != ""
	}
	if !hasUniversity {
		add(CodeNoUniversity, false, i18n.NeedUniversity)
	}
	if !hasMajor {
		add(CodeNoMajor, false, i18n.NeedMajor)
	}

	for i, slot := range s.Slots {
		if slot.University.Selected != "" && slot.Major.Selected == "" {
			issues = append(issues, Issue{
				Code:       CodeMissingMajor,
				Slot:       i + 1,
				University: slot.University.Selected,
				Message:    p.Sprintf(i18n.MissingMajor, i+1, slot.University.Selected),
			})
		}
	}

	if !hasMajor {
		return issues
	}
	switch s.Form.Text(form.Program) {
	case form.ProgramSaintek:
		if !anyPresent(s.Form, []form.FieldID{form.Math}) {
			add(CodeMathRecommended, true, i18n.MathRecommended)
		}
		if !anyPresent(s.Form, sciences) {
			add(CodeScienceNeeded, true, i18n.ScienceRecommended)
		}
	case form.ProgramSoshum:
		if !anyPresent(s.Form, []form.FieldID{form.Language}) {
			add(CodeLanguageNeeded, true, i18n.LanguageRecommended)
		}
	}
	return issues
}

// Messages returns the issue texts in order.
func Messages(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Message
	}
	return out
}

func anyPresent(f *form.Form, ids []form.FieldID) bool {
	for _, id := range ids {
		if f.Read(id).Present() {
			return true
		}
	}
	return false
}
