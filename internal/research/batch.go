package research

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/site-research/internal/model"
)

// BatchResearch runs every query against every company, outer loop company,
// inner loop query. A failure in one (company, query) pair never aborts the
// batch. Concurrency bounds parallelism across companies only; queries for
// one company always run sequentially so attribute order stays insertion
// order, and per-company aggregation is deterministic either way.
func (a *Agent) BatchResearch(ctx context.Context, companies []model.Company, queries []string, concurrency int) []model.CompanyResultSet {
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("batch: starting",
		zap.Int("companies", len(companies)),
		zap.Int("queries", len(queries)),
		zap.Int("concurrency", concurrency),
	)

	results := make([]model.CompanyResultSet, len(companies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, company := range companies {
		g.Go(func() error {
			results[i] = a.researchCompany(gctx, company, queries)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (a *Agent) researchCompany(ctx context.Context, company model.Company, queries []string) model.CompanyResultSet {
	name := company.Name
	if name == "" {
		name = company.Domain
	}

	set := model.CompanyResultSet{
		CompanyName: name,
		Domain:      company.Domain,
		Attributes:  make(map[string]model.ResearchResult, len(queries)),
	}

	for _, query := range queries {
		if _, seen := set.Attributes[query]; seen {
			continue
		}
		zap.L().Info("batch: researching",
			zap.String("company", name),
			zap.String("domain", company.Domain),
			zap.String("query", query),
		)
		set.Queries = append(set.Queries, query)
		set.Attributes[query] = a.Research(ctx, company.Domain, query)
	}

	return set
}
