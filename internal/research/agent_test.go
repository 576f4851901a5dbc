package research

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const socPage = `<html><head><title>Acme Corp</title></head><body>
<nav><a href="/about">About</a><a href="/products">Products</a></nav>
<main><h1>Acme</h1><p>We build widgets for everyone.</p></main>
<footer>SOC2 Type II certified. Privacy. Terms.</footer>
</body></html>`

func newTestAgent(ai *mockAIClient, reader *mockJinaClient, cache bool) *Agent {
	return New(ai, reader, Config{
		Model:           "claude-sonnet-4-5-20250929",
		ProbeTimeout:    5 * time.Second,
		FetchTimeout:    5 * time.Second,
		CacheStructures: cache,
	})
}

func TestResearch_ProbeErrorShortCircuits(t *testing.T) {
	ai := &mockAIClient{}
	reader := &mockJinaClient{}

	a := newTestAgent(ai, reader, false)
	res := a.Research(context.Background(), "http://127.0.0.1:1", "Does this company have SOC2 compliance?")

	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, "http://127.0.0.1:1", res.Domain)
	assert.Equal(t, "Does this company have SOC2 compliance?", res.Query)
	assert.Nil(t, res.Result)

	// No classifier or extractor call, no reader fallback.
	ai.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
	reader.AssertNotCalled(t, "Read", mock.Anything, mock.Anything)
}

func TestResearch_FooterRouting(t *testing.T) {
	site := newRecordingSite(map[string]string{"/": socPage})
	defer site.srv.Close()

	ai := &mockAIClient{}
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(isClassifyReq)).
		Return(textResponse("footer - certifications typically here"), nil).Once()
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(isExtractReq)).
		Return(textResponse(`{"answer": "Yes, SOC2 Type II", "confidence": "high", "evidence": "SOC2 Type II certified.", "found": true}`), nil).Once()

	a := newTestAgent(ai, &mockJinaClient{}, false)
	res := a.Research(context.Background(), site.srv.URL, "Does this company have SOC2 compliance?")

	require.True(t, res.Success, res.Error)
	require.NotNil(t, res.Result)
	assert.Equal(t, "Yes, SOC2 Type II", res.Result.Answer)
	assert.Equal(t, "high", res.Result.Confidence)
	assert.Equal(t, "footer", res.SectionSearched)

	// Routed to the footer branch: root hit by probe and footer fetch only,
	// never /about or /products candidates.
	assert.Equal(t, []string{"/", "/"}, site.requested())

	// tokens_saved is main content minus the narrowed footer text.
	assert.Equal(t, len("Acme We build widgets for everyone.")-len("SOC2 Type II certified. Privacy. Terms."), res.TokensSaved)
	ai.AssertExpectations(t)
}

func TestResearch_ExtractCallErrorFailsResult(t *testing.T) {
	site := newRecordingSite(map[string]string{"/": socPage})
	defer site.srv.Close()

	ai := &mockAIClient{}
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(isClassifyReq)).
		Return(textResponse("footer - certs"), nil)
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(isExtractReq)).
		Return(nil, eris.New("anthropic: create message: overloaded"))

	a := newTestAgent(ai, &mockJinaClient{}, false)
	res := a.Research(context.Background(), site.srv.URL, "q")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "overloaded")
	assert.Nil(t, res.Result)
}

func TestResearch_FetchFailureFailsResult(t *testing.T) {
	site := newRecordingSite(map[string]string{"/": socPage})
	defer site.srv.Close()

	ai := &mockAIClient{}
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(isClassifyReq)).
		Return(textResponse("pricing - plans page"), nil)

	reader := &mockJinaClient{}
	reader.On("Read", mock.Anything, mock.Anything).
		Return(nil, eris.New("jina: unexpected status 503"))

	a := newTestAgent(ai, reader, false)
	res := a.Research(context.Background(), site.srv.URL, "q")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "Error fetching content")
	ai.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.MatchedBy(isExtractReq))
}

func TestResearch_CacheReusesProbeAndContent(t *testing.T) {
	site := newRecordingSite(map[string]string{"/": socPage})
	defer site.srv.Close()

	ai := &mockAIClient{}
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(isClassifyReq)).
		Return(textResponse("footer - certs"), nil).Twice()
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(isExtractReq)).
		Return(textResponse(`{"answer": "yes", "confidence": "high", "found": true}`), nil).Twice()

	a := newTestAgent(ai, &mockJinaClient{}, true)
	first := a.Research(context.Background(), site.srv.URL, "q1")
	second := a.Research(context.Background(), site.srv.URL, "q2")

	require.True(t, first.Success)
	require.True(t, second.Success)

	// One probe plus one footer fetch; the second query hits the cache.
	assert.Equal(t, []string{"/", "/"}, site.requested())
}
