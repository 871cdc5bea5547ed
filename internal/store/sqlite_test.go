package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/emailscout/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func testTarget() model.Target {
	return model.Target{
		Company:  "Acme",
		Location: "Austin, TX",
		Pages:    3,
		Convention: model.NamingConvention{
			Separator:    ".",
			DomainSuffix: "@acme.com",
		},
	}
}

func testRows() []model.ResultRow {
	name1 := model.ParsedName{FullName: "Jane Doe", Position: "HR Manager", FirstName: "Jane", LastName: "Doe"}
	name2 := model.ParsedName{FullName: "Bob Brown", Position: "Recruiter", FirstName: "Bob", LastName: "Brown"}
	return []model.ResultRow{
		{
			Name:    name1,
			Email:   model.CandidateEmail{Address: "jane.doe@acme.com", Source: name1},
			Verdict: model.ValidationVerdict{Status: model.StatusValidDomain, Confidence: model.ConfidenceHigh},
			Link:    "https://linkedin.com/in/janedoe",
		},
		{
			Name:    name2,
			Email:   model.CandidateEmail{Address: "bob.brown@acme.com", Source: name2},
			Verdict: model.ValidationVerdict{Status: model.StatusNoMXRecord, Confidence: model.ConfidenceMedium},
			Link:    "https://linkedin.com/in/bobbrown",
		},
	}
}

func TestSQLiteCreateAndGetRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testTarget())
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, testTarget(), got.Target)
	assert.Equal(t, model.RunStatusQueued, got.Status)
	assert.Nil(t, got.Result)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetRun(context.Background(), "no-such-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteUpdateRunStatus(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testTarget())
	require.NoError(t, err)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusSearching))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusSearching, got.Status)

	err = s.UpdateRunStatus(ctx, "no-such-run", model.RunStatusSearching)
	require.Error(t, err)
}

func TestSQLiteCompleteRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testTarget())
	require.NoError(t, err)

	result := &model.RunResult{RecordsFound: 10, RowsEmitted: 7, Deduped: 2, SkippedRows: 1, DurationMS: 1200, SheetName: "Acme"}
	require.NoError(t, s.CompleteRun(ctx, run.ID, result))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, result, got.Result)
}

func TestSQLiteCompleteRunWithErrorMarksFailed(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testTarget())
	require.NoError(t, err)

	require.NoError(t, s.CompleteRun(ctx, run.ID, &model.RunResult{Error: "search cancelled"}))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "search cancelled", got.Result.Error)
}

func TestSQLiteSaveAndListRows(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testTarget())
	require.NoError(t, err)

	rows := testRows()
	require.NoError(t, s.SaveRows(ctx, run.ID, rows))

	got, err := s.ListRows(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Insertion order survives the round trip.
	assert.Equal(t, "jane.doe@acme.com", got[0].Email.Address)
	assert.Equal(t, "bob.brown@acme.com", got[1].Email.Address)
	assert.Equal(t, rows[0].Name, got[0].Name)
	assert.Equal(t, rows[0].Verdict, got[0].Verdict)
	assert.Equal(t, rows[1].Link, got[1].Link)
}

func TestSQLiteSaveRowsEmptyIsNoop(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testTarget())
	require.NoError(t, err)
	require.NoError(t, s.SaveRows(ctx, run.ID, nil))

	got, err := s.ListRows(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteListRunsFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	acme, err := s.CreateRun(ctx, testTarget())
	require.NoError(t, err)

	other := testTarget()
	other.Company = "Globex"
	globex, err := s.CreateRun(ctx, other)
	require.NoError(t, err)
	require.NoError(t, s.UpdateRunStatus(ctx, globex.ID, model.RunStatusSearching))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	queued, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusQueued})
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, acme.ID, queued[0].ID)

	byCompany, err := s.ListRuns(ctx, RunFilter{Company: "Globex"})
	require.NoError(t, err)
	require.Len(t, byCompany, 1)
	assert.Equal(t, globex.ID, byCompany[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
