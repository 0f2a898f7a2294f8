// Package result holds and renders the outcome of a submission: the
// prediction, any validation issues or error, and recommendation tables.
package result

import (
	"github.com/p-n-ai/unimatch/internal/api"
	"github.com/p-n-ai/unimatch/internal/validate"
)

// View is the result area. The primary region holds at most one of a
// prediction, an issue list or an error message and is replaced on every
// update. Recommendation blocks accumulate below it until Reset.
type View struct {
	prediction      *api.PredictResult
	issues          []validate.Issue
	errMsg          string
	recommendations []api.Recommendations
}

// State is a serializable copy of the view.
type State struct {
	Prediction      *api.PredictResult    `json:"prediction,omitempty"`
	Issues          []validate.Issue      `json:"issues,omitempty"`
	Error           string                `json:"error,omitempty"`
	Recommendations []api.Recommendations `json:"recommendations,omitempty"`
}

// SetPrediction replaces the primary region with res.
func (v *View) SetPrediction(res *api.PredictResult) {
	v.prediction, v.issues, v.errMsg = res, nil, ""
}

// SetIssues replaces the primary region with a list of validation issues.
func (v *View) SetIssues(issues []validate.Issue) {
	v.prediction, v.errMsg = nil, ""
	v.issues = append([]validate.Issue(nil), issues...)
}

// SetError replaces the primary region with a single message.
func (v *View) SetError(msg string) {
	v.prediction, v.issues, v.errMsg = nil, nil, msg
}

// AppendRecommendations adds a block of tables after the primary region.
// Empty blocks are ignored.
func (v *View) AppendRecommendations(rec *api.Recommendations) {
	if rec.Empty() {
		return
	}
	v.recommendations = append(v.recommendations, *rec)
}

// Latest returns the most recent recommendation block.
func (v *View) Latest() (*api.Recommendations, bool) {
	if len(v.recommendations) == 0 {
		return nil, false
	}
	r := v.recommendations[len(v.recommendations)-1]
	return &r, true
}

// Reset clears the whole result area.
func (v *View) Reset() {
	*v = View{}
}

// IsEmpty reports whether nothing would be rendered.
func (v *View) IsEmpty() bool {
	return v.prediction == nil && len(v.issues) == 0 && v.errMsg == "" && len(v.recommendations) == 0
}

// State copies the view for transport.
func (v *View) State() State {
	return State{
		Prediction:      v.prediction,
		Issues:          append([]validate.Issue(nil), v.issues...),
		Error:           v.errMsg,
		Recommendations: append([]api.Recommendations(nil), v.recommendations...),
	}
}
