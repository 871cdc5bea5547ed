package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscout/emailscout/internal/model"
	"github.com/leadscout/emailscout/internal/store"
)

func newServeStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { st.Close() })
	return st
}

func TestBuildRouter_HealthEndpoint(t *testing.T) {
	r := buildRouter(context.Background(), newServeStore(t), nil, ".")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	err := json.Unmarshal(rr.Body.Bytes(), &body)
	require.NoError(t, err)
	assert.Equal(t, "ok", body["status"])
}

func TestBuildRouter_ListRuns(t *testing.T) {
	st := newServeStore(t)
	_, err := st.CreateRun(context.Background(), model.Target{Company: "Acme", Location: "Austin, TX"})
	require.NoError(t, err)

	r := buildRouter(context.Background(), st, nil, ".")

	req := httptest.NewRequest(http.MethodGet, "/runs?company=Acme", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var runs []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "Acme", runs[0].Target.Company)
}

func TestBuildRouter_WebhookScout_Valid_NilScout(t *testing.T) {
	// With a nil scout, the goroutine skips the run gracefully.
	r := buildRouter(context.Background(), newServeStore(t), nil, ".")

	payload := map[string]string{
		"company":  "Acme",
		"location": "Austin, TX",
		"suffix":   "@acme.com",
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/webhook/scout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusAccepted, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp["status"])
	assert.Equal(t, "Acme", resp["company"])

	// Give the goroutine time to execute the nil check path.
	time.Sleep(10 * time.Millisecond)
}

func TestBuildRouter_WebhookScout_MissingFields(t *testing.T) {
	r := buildRouter(context.Background(), newServeStore(t), nil, ".")

	payload := map[string]string{"company": "Acme"}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/webhook/scout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "required")
}

func TestBuildRouter_WebhookScout_InvalidJSON(t *testing.T) {
	r := buildRouter(context.Background(), newServeStore(t), nil, ".")

	req := httptest.NewRequest(http.MethodPost, "/webhook/scout", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}
