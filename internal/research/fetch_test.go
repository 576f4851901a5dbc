package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-research/internal/model"
	"github.com/sells-group/site-research/pkg/jina"
)

// recordingSite serves canned HTML per path and records request order.
type recordingSite struct {
	mu    sync.Mutex
	paths []string
	pages map[string]string
	srv   *httptest.Server
}

func newRecordingSite(pages map[string]string) *recordingSite {
	site := &recordingSite{pages: pages}
	site.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		site.paths = append(site.paths, r.URL.Path)
		site.mu.Unlock()

		body, ok := site.pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	return site
}

func (s *recordingSite) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func newFetcher(reader jina.Client) *TargetedFetcher {
	return NewTargetedFetcher(5*time.Second, "Mozilla/5.0 (compatible; ResearchBot/1.0)", reader)
}

func TestCandidateURLs_Order(t *testing.T) {
	f := newFetcher(nil)
	assert.Equal(t,
		[]string{"https://acme.com/about", "https://acme.com/about-us", "https://acme.com/company"},
		f.CandidateURLs("acme.com", model.CategoryAbout),
	)
	assert.Equal(t,
		[]string{"https://acme.com/pricing", "https://acme.com/plans"},
		f.CandidateURLs("acme.com", model.CategoryPricing),
	)
	assert.Equal(t, []string{"https://acme.com"}, f.CandidateURLs("acme.com/", model.CategoryFooter))
	assert.Nil(t, f.CandidateURLs("acme.com", model.CategoryMainContent))

	// Repeat calls are deterministic.
	assert.Equal(t,
		f.CandidateURLs("acme.com", model.CategoryAbout),
		f.CandidateURLs("acme.com", model.CategoryAbout),
	)
}

func TestFetch_FirstNonEmptyCandidateWins(t *testing.T) {
	site := newRecordingSite(map[string]string{
		"/about-us": `<html><body><main>Founded in 2001 by two engineers.</main></body></html>`,
		"/company":  `<html><body><main>Should never be fetched.</main></body></html>`,
	})
	defer site.srv.Close()

	f := newFetcher(nil)
	content, err := f.Fetch(context.Background(), site.srv.URL, model.LocationHint{Category: model.CategoryAbout})
	require.NoError(t, err)
	assert.Equal(t, "Founded in 2001 by two engineers.", content)
	assert.Equal(t, []string{"/about", "/about-us"}, site.requested())
}

func TestFetch_FooterRegionOnly(t *testing.T) {
	site := newRecordingSite(map[string]string{
		"/": `<html><body><main>Main body text.</main><footer>SOC2 Type II certified.</footer></body></html>`,
	})
	defer site.srv.Close()

	f := newFetcher(nil)
	content, err := f.Fetch(context.Background(), site.srv.URL, model.LocationHint{Category: model.CategoryFooter})
	require.NoError(t, err)
	assert.Equal(t, "SOC2 Type II certified.", content)
	assert.NotContains(t, content, "Main body text")
	assert.Equal(t, []string{"/"}, site.requested())
}

func TestFetch_ExhaustedCandidatesFallBackToReader(t *testing.T) {
	site := newRecordingSite(nil) // every candidate 404s
	defer site.srv.Close()

	reader := &mockJinaClient{}
	reader.On("Read", mock.Anything, site.srv.URL).
		Return(&jina.ReadResponse{Code: 200, Data: jina.ReadData{Content: "clean full-page text"}}, nil)

	f := newFetcher(reader)
	content, err := f.Fetch(context.Background(), site.srv.URL, model.LocationHint{Category: model.CategoryPricing})
	require.NoError(t, err)
	assert.Equal(t, "clean full-page text", content)
	assert.Equal(t, []string{"/pricing", "/plans"}, site.requested())
	reader.AssertExpectations(t)
}

func TestFetch_UnknownCategorySkipsCandidates(t *testing.T) {
	site := newRecordingSite(map[string]string{
		"/": `<html><body>never fetched</body></html>`,
	})
	defer site.srv.Close()

	reader := &mockJinaClient{}
	reader.On("Read", mock.Anything, site.srv.URL).
		Return(&jina.ReadResponse{Code: 200, Data: jina.ReadData{Content: "reader text"}}, nil)

	f := newFetcher(reader)
	content, err := f.Fetch(context.Background(), site.srv.URL, model.LocationHint{Category: model.CategoryMainContent})
	require.NoError(t, err)
	assert.Equal(t, "reader text", content)
	assert.Empty(t, site.requested())
}

func TestFetch_EmptyFooterFallsThrough(t *testing.T) {
	site := newRecordingSite(map[string]string{
		"/": `<html><body><main>No footer on this page.</main></body></html>`,
	})
	defer site.srv.Close()

	reader := &mockJinaClient{}
	reader.On("Read", mock.Anything, site.srv.URL).
		Return(&jina.ReadResponse{Code: 200, Data: jina.ReadData{Content: "reader fallback"}}, nil)

	f := newFetcher(reader)
	content, err := f.Fetch(context.Background(), site.srv.URL, model.LocationHint{Category: model.CategoryFooter})
	require.NoError(t, err)
	assert.Equal(t, "reader fallback", content)
}

func TestFetch_AllOptionsExhausted(t *testing.T) {
	site := newRecordingSite(nil)
	defer site.srv.Close()

	reader := &mockJinaClient{}
	reader.On("Read", mock.Anything, mock.Anything).
		Return(nil, eris.New("jina: unexpected status 500"))

	f := newFetcher(reader)
	_, err := f.Fetch(context.Background(), site.srv.URL, model.LocationHint{Category: model.CategoryAbout})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Error fetching content"), err.Error())
}

func TestFetch_TruncatesNarrowedContent(t *testing.T) {
	site := newRecordingSite(map[string]string{
		"/pricing": `<html><body><main>` + strings.Repeat("p", 20000) + `</main></body></html>`,
	})
	defer site.srv.Close()

	f := newFetcher(nil)
	content, err := f.Fetch(context.Background(), site.srv.URL, model.LocationHint{Category: model.CategoryPricing})
	require.NoError(t, err)
	assert.Len(t, content, model.MaxNarrowedChars)
}
