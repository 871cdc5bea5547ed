package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/leadscout/emailscout/internal/config"
	"github.com/leadscout/emailscout/internal/model"
	"github.com/leadscout/emailscout/internal/store"
	"github.com/leadscout/emailscout/internal/validate"
	"github.com/leadscout/emailscout/internal/workbook"
	"github.com/leadscout/emailscout/pkg/serpapi"
)

// Progress weighting between the two long-running phases: search
// pagination first, then derivation with MX lookups.
const searchProgressShare = 0.4

// maxSearchPages caps pagination regardless of what the target asks for.
const maxSearchPages = 20

// Scout runs the full search → derive → persist flow for one company.
type Scout struct {
	cfg      *config.Config
	store    store.Store
	serp     serpapi.Client
	resolver validate.Resolver
	progress ProgressFunc
}

// NewScout creates a Scout with all dependencies.
func NewScout(cfg *config.Config, st store.Store, serp serpapi.Client, resolver validate.Resolver, progress ProgressFunc) *Scout {
	return &Scout{
		cfg:      cfg,
		store:    st,
		serp:     serp,
		resolver: resolver,
		progress: progress,
	}
}

// BuildQuery assembles the Google query for LinkedIn profile titles:
// site-restricted to profile pages, OR-ing the configured role keywords,
// pinned to the target location.
func BuildQuery(company, location string, roles []string) string {
	quoted := make([]string, len(roles))
	for i, role := range roles {
		quoted[i] = fmt.Sprintf("%q", role)
	}
	return fmt.Sprintf(`site:linkedin.com/in (%s) (%s) (%q)`,
		company, strings.Join(quoted, " OR "), location)
}

// Run executes a scout run: paginated profile search, batch derivation,
// then persistence to the store and the workbook sheet named after the
// company. Individual page failures are logged and skipped; a failed run
// is recorded with its error.
func (s *Scout) Run(ctx context.Context, target model.Target) (*model.Run, []model.ResultRow, error) {
	log := zap.L().With(zap.String("company", target.Company))
	start := time.Now()

	run, err := s.store.CreateRun(ctx, target)
	if err != nil {
		return nil, nil, eris.Wrap(err, "scout: create run")
	}

	rows, result, err := s.execute(ctx, run.ID, target, log)
	result.DurationMS = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		if saveErr := s.store.CompleteRun(ctx, run.ID, result); saveErr != nil {
			log.Warn("scout: failed to record run failure", zap.Error(saveErr))
		}
		return run, nil, err
	}

	if err := s.store.SaveRows(ctx, run.ID, rows); err != nil {
		log.Warn("scout: failed to save result rows", zap.Error(err))
	}
	if err := s.store.CompleteRun(ctx, run.ID, result); err != nil {
		log.Warn("scout: failed to complete run", zap.Error(err))
	}

	run.Status = model.RunStatusComplete
	run.Result = result

	log.Info("scout: run complete",
		zap.String("run_id", run.ID),
		zap.Int("records_found", result.RecordsFound),
		zap.Int("rows_emitted", result.RowsEmitted),
		zap.Int("skipped", result.SkippedRows),
		zap.Int64("duration_ms", result.DurationMS),
	)

	return run, rows, nil
}

func (s *Scout) execute(ctx context.Context, runID string, target model.Target, log *zap.Logger) ([]model.ResultRow, *model.RunResult, error) {
	result := &model.RunResult{}

	s.setStatus(ctx, log, runID, model.RunStatusSearching)
	records, err := s.search(ctx, target, log)
	if err != nil {
		return nil, result, err
	}
	result.RecordsFound = len(records)

	s.setStatus(ctx, log, runID, model.RunStatusDeriving)
	deriver := NewDeriver(
		validate.NewClassifier(s.resolver, time.Duration(s.cfg.Validate.MXTimeoutSecs)*time.Second),
		WithConcurrency(s.cfg.Validate.Concurrency),
		WithProgress(func(fraction float64) {
			s.reportProgress(searchProgressShare + (1-searchProgressShare)*fraction)
		}),
	)

	derived, err := deriver.Run(ctx, records, target.Convention)
	if err != nil {
		return nil, result, err
	}
	result.RowsEmitted = len(derived.Rows)
	result.Deduped = derived.Deduped
	result.SkippedRows = derived.Skipped

	s.setStatus(ctx, log, runID, model.RunStatusWriting)
	if s.cfg.Workbook.Path != "" && len(derived.Rows) > 0 {
		if err := workbook.WriteResults(s.cfg.Workbook.Path, target.Company, derived.Rows); err != nil {
			return nil, result, eris.Wrap(err, "scout: write workbook")
		}
		result.SheetName = target.Company
	}

	return derived.Rows, result, nil
}

// search pages through SerpAPI organic results, collecting records whose
// title carries the hyphen delimiter. A failed page is skipped, not fatal;
// an empty page ends pagination early.
func (s *Scout) search(ctx context.Context, target model.Target, log *zap.Logger) ([]model.RawRecord, error) {
	pages := target.Pages
	if pages <= 0 {
		pages = s.cfg.Search.Pages
	}
	if pages > maxSearchPages {
		pages = maxSearchPages
	}
	pageSize := s.cfg.Search.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	query := BuildQuery(target.Company, target.Location, s.cfg.Search.Roles)
	log.Debug("scout: search query", zap.String("query", query))

	var records []model.RawRecord
	for page := 0; page < pages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "scout: search cancelled")
		}

		resp, err := s.serp.Search(ctx, query,
			serpapi.WithStart(page*pageSize),
			serpapi.WithNum(pageSize),
		)
		if err != nil {
			log.Warn("scout: search page failed", zap.Int("page", page), zap.Error(err))
			continue
		}

		if len(resp.OrganicResults) == 0 {
			log.Debug("scout: no more results", zap.Int("page", page))
			s.reportProgress(searchProgressShare)
			break
		}

		for _, r := range resp.OrganicResults {
			if r.Title == "" || r.Link == "" || !strings.Contains(r.Title, "-") {
				continue
			}
			records = append(records, model.RawRecord{Title: r.Title, Link: r.Link})
		}

		s.reportProgress(searchProgressShare * float64(page+1) / float64(pages))
	}

	log.Info("scout: search complete", zap.Int("records", len(records)))
	return records, nil
}

func (s *Scout) setStatus(ctx context.Context, log *zap.Logger, runID string, status model.RunStatus) {
	// Status updates are best-effort observability, not control flow.
	if err := s.store.UpdateRunStatus(ctx, runID, status); err != nil {
		log.Warn("scout: failed to update run status", zap.String("status", string(status)), zap.Error(err))
	}
}

func (s *Scout) reportProgress(fraction float64) {
	if s.progress != nil {
		s.progress(fraction)
	}
}
