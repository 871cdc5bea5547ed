package pipeline

import (
	"context"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/leadscout/emailscout/internal/model"
	"github.com/leadscout/emailscout/internal/store"
	"github.com/leadscout/emailscout/pkg/serpapi"
)

// serpPage scripts one Search call of the fake client.
type serpPage struct {
	resp *serpapi.SearchResponse
	err  error
}

// fakeSerpClient replays scripted pages in call order and records the
// queries it was asked for. Calls past the script return an empty page.
type fakeSerpClient struct {
	mu      sync.Mutex
	pages   []serpPage
	calls   int
	queries []string
}

func (f *fakeSerpClient) Search(ctx context.Context, query string, opts ...serpapi.SearchOption) (*serpapi.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	i := f.calls
	f.calls++
	if i >= len(f.pages) {
		return &serpapi.SearchResponse{}, nil
	}
	return f.pages[i].resp, f.pages[i].err
}

// resolverFunc adapts a function to the validate.Resolver interface.
type resolverFunc func(ctx context.Context, domain string) ([]*net.MX, error)

func (f resolverFunc) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return f(ctx, domain)
}

// mxFound is a resolver stub whose every lookup succeeds with one record.
var mxFound = resolverFunc(func(ctx context.Context, domain string) ([]*net.MX, error) {
	return []*net.MX{{Host: "mx." + domain, Pref: 10}}, nil
})

// mxAbsent is a resolver stub whose every lookup returns no records.
var mxAbsent = resolverFunc(func(ctx context.Context, domain string) ([]*net.MX, error) {
	return nil, nil
})

// memStore is an in-memory store.Store for orchestration tests.
type memStore struct {
	mu       sync.Mutex
	runs     map[string]*model.Run
	rows     map[string][]model.ResultRow
	statuses []model.RunStatus
}

func newMemStore() *memStore {
	return &memStore{
		runs: make(map[string]*model.Run),
		rows: make(map[string][]model.ResultRow),
	}
}

func (s *memStore) CreateRun(ctx context.Context, target model.Target) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := &model.Run{ID: uuid.NewString(), Target: target, Status: model.RunStatusQueued}
	s.runs[run.ID] = run
	return run, nil
}

func (s *memStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID].Status = status
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *memStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run := s.runs[runID]
	run.Result = result
	if result.Error != "" {
		run.Status = model.RunStatusFailed
	} else {
		run.Status = model.RunStatusComplete
	}
	return nil
}

func (s *memStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[runID], nil
}

func (s *memStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Run
	for _, run := range s.runs {
		out = append(out, *run)
	}
	return out, nil
}

func (s *memStore) SaveRows(ctx context.Context, runID string, rows []model.ResultRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[runID] = rows
	return nil
}

func (s *memStore) ListRows(ctx context.Context, runID string) ([]model.ResultRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[runID], nil
}

func (s *memStore) Migrate(ctx context.Context) error { return nil }

func (s *memStore) Close() error { return nil }
