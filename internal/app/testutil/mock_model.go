package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"stt-bridge/internal/app/api/provider"
)

// MockModel is a testify mock of provider.Model. Transcribe goes through the
// mock so expectations and call order can be asserted; the segments configured
// for a path are emitted before the mocked error is returned.
type MockModel struct {
	mock.Mock
	mu sync.Mutex

	info     provider.ModelInfo
	segments map[string][]provider.Segment
	closed   int
}

// NewMockModel creates a MockModel reporting the given provider name.
func NewMockModel(providerName string) *MockModel {
	return &MockModel{
		info: provider.ModelInfo{
			Provider:  providerName,
			Type:      provider.ProviderTypeLocal,
			ModelPath: "mock://" + providerName,
		},
		segments: make(map[string][]provider.Segment),
	}
}

// WithSegments configures the segment texts emitted for path. Each segment
// lasts one second.
func (m *MockModel) WithSegments(path string, texts ...string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()

	segs := make([]provider.Segment, 0, len(texts))
	for i, text := range texts {
		segs = append(segs, provider.Segment{Text: text, Start: float64(i), End: float64(i + 1)})
	}
	m.segments[path] = segs
	return m
}

// ExpectTranscribe registers an expectation for path with any options and
// returns the mock call so callers can set Return values.
func (m *MockModel) ExpectTranscribe(path string) *mock.Call {
	return m.On("Transcribe", mock.Anything, path, mock.Anything, mock.Anything)
}

// Transcribe implements provider.Model.
func (m *MockModel) Transcribe(ctx context.Context, path string, opts provider.DecodeOptions, emit provider.SegmentHandler) error {
	args := m.Called(ctx, path, opts, emit)

	m.mu.Lock()
	segs := m.segments[path]
	m.mu.Unlock()

	for _, seg := range segs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(seg); err != nil {
			return err
		}
	}
	return args.Error(0)
}

// Info implements provider.Model.
func (m *MockModel) Info() provider.ModelInfo {
	return m.info
}

// Close implements provider.Model.
func (m *MockModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed++
	return nil
}

// CloseCount reports how many times Close was called.
func (m *MockModel) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
