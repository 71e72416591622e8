package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NivBraz/topworkplaces/internal/config"
	"github.com/NivBraz/topworkplaces/internal/models"
)

func newShiftsServer(t *testing.T, shifts string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/shifts":
			io.WriteString(w, shifts)
		case "/workplaces/A":
			io.WriteString(w, `{"data":{"id":"A","name":"Acme"}}`)
		case "/workplaces/B":
			io.WriteString(w, `{"id":"B","name":"Beta"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRootCmd_PrintsReport(t *testing.T) {
	server := newShiftsServer(t, `[{"id":1,"workplaceId":"A"},{"id":2,"workplaceId":"A"},{"id":3,"workplaceId":"B"}]`)

	stdout, stderr, err := execute(t, "--base-url", server.URL)
	require.NoError(t, err, stderr)

	var got []models.ReportEntry
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, []models.ReportEntry{{Name: "Acme", Shifts: 2}, {Name: "Beta", Shifts: 1}}, got)
	assert.True(t, strings.HasPrefix(stdout, "[\n  {"), "expected two-space indent, got %q", stdout)
	assert.Contains(t, stderr, "Fetching shifts from API")
}

func TestRootCmd_WithStats(t *testing.T) {
	server := newShiftsServer(t, `[{"id":1,"workplaceId":"A"}]`)

	stdout, _, err := execute(t, "--base-url", server.URL, "--with-stats", "--top", "1")
	require.NoError(t, err)

	var got models.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, models.StatusOK, got.Status)
	assert.Equal(t, 1, got.Stats.TotalShifts)
}

func TestRootCmd_NoShifts(t *testing.T) {
	server := newShiftsServer(t, `{"data":[]}`)

	stdout, stderr, err := execute(t, "--base-url", server.URL)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "No shifts found.")
}

func TestRootCmd_ShiftsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	stdout, stderr, err := execute(t, "--base-url", server.URL)
	require.ErrorIs(t, err, errRunFailed)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "HTTP error: ")
	assert.Contains(t, stderr, `"kind":"http"`)
}

func TestRootCmd_InvalidFlags(t *testing.T) {
	_, _, err := execute(t, "--base-url", "not-a-url")
	assert.Error(t, err)

	_, _, err = execute(t, "--top", "0")
	assert.Error(t, err)

	_, _, err = execute(t, "unexpected-arg")
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	cmd := newRootCmd(io.Discard, io.Discard)
	require.NoError(t, cmd.Flags().Parse([]string{"--top", "5", "--concurrency", "2", "-v", "--progress"}))

	cfg := config.Default()
	require.NoError(t, applyFlags(cmd.Flags(), cfg))
	assert.Equal(t, 5, cfg.Output.TopN)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Output.ShowProgress)
	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL, "unset flags keep config values")
}
