// Package research implements the targeted-retrieval research pipeline:
// probe a site's structure, ask the model where an answer likely lives,
// fetch only that region, and extract a structured answer from it.
package research

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sells-group/site-research/internal/model"
)

// StructureProbe fetches a site's landing page and extracts a lightweight
// structural summary. A probe failure is the only place a fetch error
// short-circuits the whole pipeline.
type StructureProbe struct {
	client    *http.Client
	userAgent string
}

// NewStructureProbe creates a StructureProbe with a bounded-timeout client.
func NewStructureProbe(timeout time.Duration, userAgent string) *StructureProbe {
	return &StructureProbe{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// NormalizeDomain prefixes https:// when the domain has no scheme. The
// caller's original string is left untouched for result labeling.
func NormalizeDomain(domain string) string {
	if !strings.HasPrefix(domain, "http") {
		return "https://" + domain
	}
	return domain
}

// Probe fetches the landing page and summarizes it. On any failure the
// returned structure carries only Domain and Error; all other fields are
// unreliable and must not be used downstream.
func (p *StructureProbe) Probe(ctx context.Context, domain string) model.WebsiteStructure {
	target := NormalizeDomain(domain)
	structure := model.WebsiteStructure{Domain: target}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		structure.Error = err.Error()
		return structure
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		structure.Error = err.Error()
		return structure
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		structure.Error = fmt.Sprintf("probe: status %d for %s", resp.StatusCode, target)
		return structure
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		structure.Error = err.Error()
		return structure
	}

	structure.Title = collapseSpace(doc.Find("title").First().Text())
	if structure.Title == "" {
		structure.Title = "No title"
	}

	// Navigation candidates: anchors inside nav elements, plus anchors whose
	// class suggests navigation or a menu. Heuristic, not exhaustive.
	doc.Find("nav a, a[class*='nav'], a[class*='menu']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" {
			return true
		}
		structure.NavLinks = append(structure.NavLinks, model.NavLink{
			Text: collapseSpace(s.Text()),
			Href: href,
		})
		return len(structure.NavLinks) < model.MaxNavLinks
	})

	// Footer often carries certifications, compliance, and legal info.
	if footer := doc.Find("footer").First(); footer.Length() > 0 {
		structure.FooterText = truncate(collapseSpace(footer.Text()), model.MaxFooterChars)
	}

	main := doc.Find("main").First()
	if main.Length() == 0 {
		main = doc.Find("body").First()
	}
	structure.MainContent = truncate(collapseSpace(main.Text()), model.MaxMainChars)

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		label := collapseSpace(s.Text())
		if label != "" && len(label) < model.MaxSectionChars {
			structure.Sections = append(structure.Sections, label)
		}
	})

	zap.L().Debug("probe: site structure summarized",
		zap.String("domain", target),
		zap.String("title", structure.Title),
		zap.Int("sections", len(structure.Sections)),
		zap.Int("nav_links", len(structure.NavLinks)),
		zap.Bool("has_footer", structure.FooterText != ""),
	)

	return structure
}

// collapseSpace strips tags' leftover whitespace down to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
