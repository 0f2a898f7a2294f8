// Package payload builds the request body shared by /api/predict and
// /api/recommend.
package payload

import (
	"github.com/p-n-ai/unimatch/internal/form"
	"github.com/p-n-ai/unimatch/internal/selection"
)

// Unknown is sent as the singular target when no slot is filled.
const Unknown = "Unknown"

// Payload is the wire object. Nil pointers encode as JSON null.
type Payload struct {
	Program         string `json:"program"`
	Competitiveness string `json:"competitiveness"`
	Achievement     string `json:"achievement"`
	Accreditation   string `json:"accreditation"`

	S1        *float64 `json:"s1"`
	S2        *float64 `json:"s2"`
	S3        *float64 `json:"s3"`
	S4        *float64 `json:"s4"`
	S5        *float64 `json:"s5"`
	Math      *float64 `json:"math"`
	Language  *float64 `json:"language"`
	Physics   *float64 `json:"physics"`
	Chemistry *float64 `json:"chemistry"`
	Biology   *float64 `json:"biology"`
	Economics *float64 `json:"economics"`
	Geography *float64 `json:"geography"`
	History   *float64 `json:"history"`

	RankPercentile int `json:"rank_percentile"`

	TargetUniversities []string `json:"target_universities"`
	TargetMajors       []string `json:"target_majors"`

	TargetUniversity1 *string `json:"target_university_1"`
	TargetUniversity2 *string `json:"target_university_2"`
	TargetUniversity3 *string `json:"target_university_3"`
	TargetMajor1      *string `json:"target_major_1"`
	TargetMajor2      *string `json:"target_major_2"`
	TargetMajor3      *string `json:"target_major_3"`

	TargetUniversity string `json:"target_university"`
	TargetMajor      string `json:"target_major"`
}

// Build projects the form and slots into a payload. It does not modify
// either input.
func Build(f *form.Form, slots []selection.Slot) Payload {
	p := Payload{
		Program:            f.Text(form.Program),
		Competitiveness:    f.Text(form.Competitiveness),
		Achievement:        f.Text(form.Achievement),
		Accreditation:      f.Text(form.Accreditation),
		RankPercentile:     100,
		TargetUniversities: []string{},
		TargetMajors:       []string{},
		TargetUniversity:   Unknown,
		TargetMajor:        Unknown,
	}

	grades := map[form.FieldID]**float64{
		form.S1: &p.S1, form.S2: &p.S2, form.S3: &p.S3, form.S4: &p.S4, form.S5: &p.S5,
		form.Math: &p.Math, form.Language: &p.Language,
		form.Physics: &p.Physics, form.Chemistry: &p.Chemistry, form.Biology: &p.Biology,
		form.Economics: &p.Economics, form.Geography: &p.Geography, form.History: &p.History,
	}
	for id, dst := range grades {
		if n, ok := f.Grade(id); ok {
			*dst = &n
		}
	}
	if n, ok := f.Grade(form.RankPercentile); ok {
		p.RankPercentile = int(n)
	}

	unis := [selection.Slots]**string{&p.TargetUniversity1, &p.TargetUniversity2, &p.TargetUniversity3}
	majors := [selection.Slots]**string{&p.TargetMajor1, &p.TargetMajor2, &p.TargetMajor3}
	for i, s := range slots {
		if i >= selection.Slots {
			break
		}
		if u := s.University.Selected; u != "" {
			*unis[i] = &u
			p.TargetUniversities = append(p.TargetUniversities, u)
		}
		if m := s.Major.Selected; m != "" {
			*majors[i] = &m
			p.TargetMajors = append(p.TargetMajors, m)
		}
	}
	if len(p.TargetUniversities) > 0 {
		p.TargetUniversity = p.TargetUniversities[0]
	}
	if len(p.TargetMajors) > 0 {
		p.TargetMajor = p.TargetMajors[0]
	}
	return p
}
