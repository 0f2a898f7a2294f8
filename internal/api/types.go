package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PredictResult is the body of a successful /api/predict call.
type PredictResult struct {
	Probability float64        `json:"probability"`
	Label       string         `json:"label"`
	Tips        []string       `json:"tips,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// RecItem is one recommended university/major pair.
type RecItem struct {
	University      string   `json:"university"`
	Major           string   `json:"major"`
	Probability     float64  `json:"probability"`
	Competitiveness string   `json:"competitiveness,omitempty"`
	Bucket          string   `json:"bucket,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	CurrentGap      *float64 `json:"current_gap,omitempty"`
	Category        string   `json:"category,omitempty"`
}

// Recommendations is the body of /api/recommend.
type Recommendations struct {
	Preferred    []RecItem `json:"preferred,omitempty"`
	Alternatives []RecItem `json:"alternatives,omitempty"`
}

// Empty reports whether neither table has rows.
func (r *Recommendations) Empty() bool {
	return r == nil || len(r.Preferred)+len(r.Alternatives) == 0
}

// RecommendParams are the /api/recommend query parameters.
type RecommendParams struct {
	PreferredN int
	AltN       int
	PerUni     int
}

// StudyItem is one subject in a chatbot study plan.
type StudyItem struct {
	Subject    string   `json:"subject"`
	Difficulty string   `json:"difficulty,omitempty"`
	Topics     []string `json:"topics,omitempty"`
}

// ChatReply is the body of /api/chatbot.
type ChatReply struct {
	Response        string      `json:"response"`
	Recommendations []RecItem   `json:"recommendations,omitempty"`
	StudyPlan       []StudyItem `json:"study_plan,omitempty"`
}

// Error is returned when the service answers with a non-2xx status or an
// {"error": ...} body.
type Error struct {
	Status   int
	Messages []string
}

func (e *Error) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("api error (status %d)", e.Status)
	}
	return fmt.Sprintf("api error (status %d): %s", e.Status, strings.Join(e.Messages, "; "))
}

// errorBody decodes {"error": "msg"} and {"error": ["a", "b"]}.
type errorBody struct {
	Error errorMessages `json:"error"`
}

type errorMessages []string

func (m *errorMessages) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*m = errorMessages{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("error field is neither string nor list: %w", err)
	}
	*m = many
	return nil
}
