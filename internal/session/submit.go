package session

import (
	"context"
	"log/slog"

	"github.com/p-n-ai/unimatch/internal/api"
	"github.com/p-n-ai/unimatch/internal/events"
	"github.com/p-n-ai/unimatch/internal/i18n"
	"github.com/p-n-ai/unimatch/internal/payload"
)

// SubmitResult is the outcome of the predict and recommend calls.
type SubmitResult struct {
	Prediction      *api.PredictResult
	PredictErr      error
	Recommendations *api.Recommendations
	RecommendErr    error
}

// BeginSubmit validates the form and marks the session busy. Validation
// issues replace the result area and return ErrInvalid; advisory issues
// block like any other.
func (s *Session) BeginSubmit() (payload.Payload, error) {
	if s.busy {
		return payload.Payload{}, ErrBusy
	}

	if issues := s.Issues(); len(issues) > 0 {
		s.view.SetIssues(issues)
		s.notify()
		return payload.Payload{}, ErrInvalid
	}

	p := s.Payload()
	s.busy = true
	s.notify()
	return p, nil
}

// FetchSubmit calls predict and, when it succeeds, recommend. It reads no
// mutable session state; analytics events are written here so the event
// loop never waits on the event store.
func (s *Session) FetchSubmit(ctx context.Context, p payload.Payload) SubmitResult {
	s.logEvent(events.PredictSubmitted, events.Fingerprint(p), map[string]any{
		"program":    p.Program,
		"choices":    len(p.TargetUniversities),
		"rank_known": p.RankPercentile != 100,
	})

	var r SubmitResult
	r.Prediction, r.PredictErr = s.svc.Predict(ctx, p)
	if r.PredictErr != nil {
		s.logEvent(events.PredictFailed, "", map[string]any{"error": r.PredictErr.Error()})
		return r
	}
	r.Recommendations, r.RecommendErr = s.svc.Recommend(ctx, p, s.params)
	if r.RecommendErr != nil {
		s.logEvent(events.RecommendFailed, "", map[string]any{"error": r.RecommendErr.Error()})
	}
	return r
}

// FinishSubmit renders a SubmitResult and clears the busy flag. A failed
// recommend call leaves the prediction in place without tables.
func (s *Session) FinishSubmit(r SubmitResult) {
	s.busy = false
	defer s.notify()

	if r.PredictErr != nil {
		slog.Error("predict failed", "session_id", s.id, "error", r.PredictErr)
		s.view.SetError(s.printer.Sprintf(i18n.RequestFailed))
		return
	}
	s.view.SetPrediction(r.Prediction)

	if r.RecommendErr != nil {
		slog.Warn("recommend failed", "session_id", s.id, "error", r.RecommendErr)
		return
	}
	s.view.AppendRecommendations(r.Recommendations)
}

// Submit runs a whole submission on the calling goroutine.
func (s *Session) Submit(ctx context.Context) error {
	p, err := s.BeginSubmit()
	if err != nil {
		return err
	}
	s.FinishSubmit(s.FetchSubmit(ctx, p))
	return nil
}
