package research

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/site-research/internal/model"
	"github.com/sells-group/site-research/pkg/anthropic"
	"github.com/sells-group/site-research/pkg/jina"
)

// Config carries the settings the agent's stages need. Passed explicitly so
// the pipeline stays testable with fakes; no ambient global state.
type Config struct {
	Model             string
	ClassifyMaxTokens int64
	ExtractMaxTokens  int64
	ProbeTimeout      time.Duration
	FetchTimeout      time.Duration
	UserAgent         string
	// CacheStructures reuses the probed structure and narrowed content per
	// normalized domain across queries. Purely additive: every documented
	// contract holds with or without it.
	CacheStructures bool
}

func (c *Config) applyDefaults() {
	if c.Model == "" {
		c.Model = "claude-sonnet-4-5-20250929"
	}
	if c.ClassifyMaxTokens == 0 {
		c.ClassifyMaxTokens = 150
	}
	if c.ExtractMaxTokens == 0 {
		c.ExtractMaxTokens = 1500
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = 15 * time.Second
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; ResearchBot/1.0)"
	}
}

// Agent drives the four-stage pipeline: probe, classify, targeted fetch,
// extract.
type Agent struct {
	probe      *StructureProbe
	classifier *LocationClassifier
	fetcher    *TargetedFetcher
	extractor  *AnswerExtractor

	cacheEnabled bool
	mu           sync.Mutex
	structures   map[string]model.WebsiteStructure
	contents     map[string]string
}

// New wires an Agent from an LLM client, a reader client, and a config.
func New(ai anthropic.Client, reader jina.Client, cfg Config) *Agent {
	cfg.applyDefaults()
	return &Agent{
		probe:        NewStructureProbe(cfg.ProbeTimeout, cfg.UserAgent),
		classifier:   NewLocationClassifier(ai, cfg.Model, cfg.ClassifyMaxTokens),
		fetcher:      NewTargetedFetcher(cfg.FetchTimeout, cfg.UserAgent, reader),
		extractor:    NewAnswerExtractor(ai, cfg.Model, cfg.ExtractMaxTokens),
		cacheEnabled: cfg.CacheStructures,
		structures:   make(map[string]model.WebsiteStructure),
		contents:     make(map[string]string),
	}
}

// Research runs the full pipeline for one (domain, query) pair. The result
// is always self-describing; failures are recorded, never raised.
func (a *Agent) Research(ctx context.Context, domain, query string) model.ResearchResult {
	result := model.ResearchResult{Domain: domain, Query: query}

	structure := a.structureFor(ctx, domain)
	if structure.Error != "" {
		result.Error = structure.Error
		return result
	}

	hint := a.classifier.Classify(ctx, structure, query)

	content, err := a.narrowedContentFor(ctx, domain, hint)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	answer, err := a.extractor.Extract(ctx, content, query, hint.RawLabel)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.Result = answer
	result.SectionSearched = hint.RawLabel
	result.TokensSaved = len(structure.MainContent) - len(content)

	zap.L().Info("research: query complete",
		zap.String("domain", domain),
		zap.String("query", query),
		zap.String("section", hint.RawLabel),
		zap.Int("tokens_saved", result.TokensSaved),
	)

	return result
}

// structureFor probes a domain, reusing a cached structure when enabled.
// Failed probes are not cached.
func (a *Agent) structureFor(ctx context.Context, domain string) model.WebsiteStructure {
	if !a.cacheEnabled {
		return a.probe.Probe(ctx, domain)
	}

	key := NormalizeDomain(domain)
	a.mu.Lock()
	cached, ok := a.structures[key]
	a.mu.Unlock()
	if ok {
		return cached
	}

	structure := a.probe.Probe(ctx, domain)
	if structure.Error == "" {
		a.mu.Lock()
		a.structures[key] = structure
		a.mu.Unlock()
	}
	return structure
}

// narrowedContentFor fetches targeted content, reusing a cached region per
// (domain, category) when enabled.
func (a *Agent) narrowedContentFor(ctx context.Context, domain string, hint model.LocationHint) (string, error) {
	if !a.cacheEnabled {
		return a.fetcher.Fetch(ctx, domain, hint)
	}

	key := NormalizeDomain(domain) + "\x00" + string(hint.Category)
	a.mu.Lock()
	cached, ok := a.contents[key]
	a.mu.Unlock()
	if ok {
		return cached, nil
	}

	content, err := a.fetcher.Fetch(ctx, domain, hint)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	a.contents[key] = content
	a.mu.Unlock()
	return content, nil
}
