package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/normalize"
	"github.com/sells-group/leads-cli/internal/store"
)

// DomainGuesser predicts a domain for a company name, or returns "".
// *canon.DomainGuesser satisfies it.
type DomainGuesser interface {
	Guess(ctx context.Context, name string) string
}

// Options controls one enrichment batch.
type Options struct {
	// Limit caps the number of pending companies selected. Zero uses the
	// configured default.
	Limit int

	// Progress receives one line per company when set.
	Progress io.Writer
}

// Runner enriches pending companies. Provider calls run concurrently;
// parsing and store writes run one at a time in selection order.
type Runner struct {
	store       store.Store
	provider    Provider
	guesser     DomainGuesser
	concurrency int
	limit       int
}

// NewRunner creates a Runner from the enrich config.
func NewRunner(st store.Store, provider Provider, cfg config.EnrichConfig) *Runner {
	conc := cfg.Concurrency
	if conc < 1 {
		conc = 1
	}
	return &Runner{store: st, provider: provider, concurrency: conc, limit: cfg.Limit}
}

// WithGuesser enables domain guessing for companies without a domain.
func (r *Runner) WithGuesser(g DomainGuesser) *Runner {
	r.guesser = g
	return r
}

type fetchResult struct {
	domain  string
	guessed bool
	raw     []byte
	err     error
}

// Run enriches one batch. Provider failures, schema errors and companies
// that vanished from the store are counted and skipped; store write
// failures and cancellation abort the batch.
func (r *Runner) Run(ctx context.Context, opts Options) (*model.EnrichReport, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = r.limit
	}
	companies, err := r.store.PendingEnrichment(ctx, limit)
	if err != nil {
		return nil, eris.Wrap(err, "enrich: load pending companies")
	}
	report := &model.EnrichReport{Selected: len(companies)}
	if len(companies) == 0 {
		return report, nil
	}

	log := zap.L().With(zap.Int("companies", len(companies)), zap.Int("concurrency", r.concurrency))
	log.Info("enrich: fetching")

	results := make([]fetchResult, len(companies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, c := range companies {
		g.Go(func() error {
			res := fetchResult{domain: c.Domain}
			if res.domain == "" && r.guesser != nil {
				if d := r.guesser.Guess(gctx, normalize.StripLegalForm(c.Name)); d != "" {
					res.domain = d
					res.guessed = true
				}
			}
			res.raw, res.err = r.provider.Enrich(gctx, c.Name, res.domain)
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return report, eris.Wrap(err, "enrich: fetch")
	}

	total := len(companies)
	for i, c := range companies {
		status, err := r.apply(ctx, c, results[i], report)
		if err != nil {
			return report, eris.Wrapf(err, "enrich: save %q", c.Name)
		}
		if opts.Progress != nil {
			fmt.Fprintf(opts.Progress, "[%d/%d] %s: %s\n", i+1, total, c.Name, status)
		}
	}

	log.Info("enrich: done",
		zap.Int("enriched", report.Enriched),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// apply parses and stores one result, updating report. Only store write
// errors are returned.
func (r *Runner) apply(ctx context.Context, c model.Company, res fetchResult, report *model.EnrichReport) (string, error) {
	log := zap.L().With(zap.String("company", c.Name))
	if res.err != nil {
		report.Failed++
		log.Warn("enrich: provider failed", zap.Error(res.err))
		return "failed", nil
	}

	payload, err := ParsePayload(res.raw)
	if err != nil {
		report.Skipped++
		log.Warn("enrich: unusable payload", zap.Error(err))
		return "skipped (schema)", nil
	}

	en := ToEnrichment(payload, c.Name)
	if en.Domain == "" && res.guessed {
		en.Domain = res.domain
	}

	err = r.store.EnrichCompany(ctx, enrichKey(c), en)
	switch {
	case errors.Is(err, model.ErrCompanyNotFound):
		report.Skipped++
		log.Warn("enrich: company no longer stored")
		return "skipped (not found)", nil
	case err != nil:
		return "", err
	}
	report.Enriched++
	return "enriched", nil
}

// enrichKey addresses the selected row itself when its id is known, so a
// name shared with another company cannot redirect the write.
func enrichKey(c model.Company) string {
	if c.ID != "" {
		return c.ID
	}
	return c.Key()
}
