package research

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/site-research/pkg/anthropic"
	"github.com/sells-group/site-research/pkg/jina"
)

// --- Anthropic mock ---

type mockAIClient struct {
	mock.Mock
}

func (m *mockAIClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// textResponse wraps text into a single-block message response.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

// isClassifyReq matches requests by the classifier's small output budget.
func isClassifyReq(req anthropic.MessageRequest) bool {
	return req.MaxTokens == 150
}

// isExtractReq matches requests by the extractor's output budget.
func isExtractReq(req anthropic.MessageRequest) bool {
	return req.MaxTokens == 1500
}

// --- Jina mock ---

type mockJinaClient struct {
	mock.Mock
}

func (m *mockJinaClient) Read(ctx context.Context, targetURL string) (*jina.ReadResponse, error) {
	args := m.Called(ctx, targetURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*jina.ReadResponse), args.Error(1)
}
