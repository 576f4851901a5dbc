package research

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-research/internal/model"
	"github.com/sells-group/site-research/pkg/jina"
)

// fetchErrPrefix keeps the original pipeline's distinct failure prefix, so
// exported failure results remain recognizable to existing callers.
const fetchErrPrefix = "Error fetching content"

// categoryPaths maps a location category to its ordered candidate paths.
// The footer category re-fetches the site root and extracts only the footer
// region. Categories absent here go straight to the reader fallback.
var categoryPaths = map[model.Category][]string{
	model.CategoryAbout:    {"/about", "/about-us", "/company"},
	model.CategoryProducts: {"/products", "/solutions", "/services"},
	model.CategoryPricing:  {"/pricing", "/plans"},
	model.CategoryFooter:   {""},
}

// TargetedFetcher retrieves the narrowed content for a location hint. It
// tries a handful of cheap targeted requests first, then falls back to a
// whole-page reader retrieval, so some content is eventually available.
type TargetedFetcher struct {
	client    *http.Client
	reader    jina.Client
	userAgent string
}

// NewTargetedFetcher creates a TargetedFetcher. The reader client is the
// fallback of last resort.
func NewTargetedFetcher(timeout time.Duration, userAgent string, reader jina.Client) *TargetedFetcher {
	return &TargetedFetcher{
		client:    &http.Client{Timeout: timeout},
		reader:    reader,
		userAgent: userAgent,
	}
}

// CandidateURLs returns the absolute URLs tried for a category, in order.
// Deterministic for identical inputs.
func (f *TargetedFetcher) CandidateURLs(domain string, category model.Category) []string {
	paths, ok := categoryPaths[category]
	if !ok {
		return nil
	}
	base := strings.TrimRight(NormalizeDomain(domain), "/")
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		urls = append(urls, base+p)
	}
	return urls
}

// Fetch returns the narrowed content for a hint, truncated to the narrowed
// cap. Candidates are tried in declared order and the first non-empty
// extraction wins; exhausted candidates and unknown categories fall back to
// the reader. Only a reader failure is terminal.
func (f *TargetedFetcher) Fetch(ctx context.Context, domain string, hint model.LocationHint) (string, error) {
	for _, target := range f.CandidateURLs(domain, hint.Category) {
		content, err := f.fetchRegion(ctx, target, hint.Category)
		if err != nil {
			zap.L().Debug("fetch: candidate failed, trying next",
				zap.String("url", target),
				zap.Error(err),
			)
			continue
		}
		if content != "" {
			zap.L().Debug("fetch: targeted candidate succeeded",
				zap.String("url", target),
				zap.String("category", string(hint.Category)),
				zap.Int("chars", len(content)),
			)
			return truncate(content, model.MaxNarrowedChars), nil
		}
	}

	// Fallback: whole-page clean-text retrieval via the reader service.
	target := NormalizeDomain(domain)
	zap.L().Debug("fetch: falling back to reader",
		zap.String("url", target),
		zap.String("category", string(hint.Category)),
	)
	resp, err := f.reader.Read(ctx, target)
	if err != nil {
		return "", eris.Wrap(err, fetchErrPrefix)
	}
	return truncate(resp.Data.Content, model.MaxNarrowedChars), nil
}

// fetchRegion GETs one candidate page and extracts the category-appropriate
// region: footer text for the footer category, otherwise the main region or
// the whole body. An empty string means the region was absent.
func (f *TargetedFetcher) fetchRegion(ctx context.Context, target string, category model.Category) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "fetch: get")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", eris.Errorf("fetch: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "fetch: parse html")
	}

	if category == model.CategoryFooter {
		return collapseSpace(doc.Find("footer").First().Text()), nil
	}

	region := doc.Find("main").First()
	if region.Length() == 0 {
		region = doc.Find("body").First()
	}
	return collapseSpace(region.Text()), nil
}
