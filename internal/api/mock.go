package api

import (
	"context"
	"sync"

	"github.com/p-n-ai/unimatch/internal/catalog"
	"github.com/p-n-ai/unimatch/internal/payload"
)

// MockService is a test double for Service. It is safe for concurrent use.
type MockService struct {
	mu sync.Mutex

	Universities    []string
	Majors          []string
	Details         map[string]catalog.Detail
	Prediction      *PredictResult
	Recommendations *Recommendations
	Reply           *ChatReply

	KBErr        error
	PredictErr   error
	RecommendErr error
	ChatErr      error
	HealthErr    error

	// Gate, when set, blocks Predict and Chat until it is closed.
	Gate chan struct{}

	LastPayload *payload.Payload
	LastParams  RecommendParams
	Messages    []string
	Calls       map[string]int
}

// NewMockService returns a mock that answers every call successfully.
func NewMockService() *MockService {
	return &MockService{
		Prediction:      &PredictResult{Probability: 0.5, Label: "medium"},
		Recommendations: &Recommendations{},
		Reply:           &ChatReply{Response: "ok"},
		Calls:           make(map[string]int),
	}
}

func (m *MockService) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = make(map[string]int)
	}
	m.Calls[name]++
}

// CallCount returns how many times the named method ran.
func (m *MockService) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func (m *MockService) wait(ctx context.Context) error {
	if m.Gate == nil {
		return nil
	}
	select {
	case <-m.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *MockService) FetchUniversities(_ context.Context) ([]string, error) {
	m.record("FetchUniversities")
	if m.KBErr != nil {
		return nil, m.KBErr
	}
	return m.Universities, nil
}

func (m *MockService) FetchMajors(_ context.Context) ([]string, map[string]catalog.Detail, error) {
	m.record("FetchMajors")
	if m.KBErr != nil {
		return nil, nil, m.KBErr
	}
	return m.Majors, m.Details, nil
}

func (m *MockService) Predict(ctx context.Context, p payload.Payload) (*PredictResult, error) {
	m.record("Predict")
	m.mu.Lock()
	m.LastPayload = &p
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.PredictErr != nil {
		return nil, m.PredictErr
	}
	return m.Prediction, nil
}

func (m *MockService) Recommend(_ context.Context, _ payload.Payload, params RecommendParams) (*Recommendations, error) {
	m.record("Recommend")
	m.mu.Lock()
	m.LastParams = params
	m.mu.Unlock()
	if m.RecommendErr != nil {
		return nil, m.RecommendErr
	}
	return m.Recommendations, nil
}

func (m *MockService) Chat(ctx context.Context, message string) (*ChatReply, error) {
	m.record("Chat")
	m.mu.Lock()
	m.Messages = append(m.Messages, message)
	m.mu.Unlock()
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if m.ChatErr != nil {
		return nil, m.ChatErr
	}
	return m.Reply, nil
}

func (m *MockService) HealthCheck(_ context.Context) error {
	m.record("HealthCheck")
	return m.HealthErr
}
