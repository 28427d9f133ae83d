package endpoints

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisrod14/destinosAI/internal/syncer"
)

func TestGenerateRequestText(t *testing.T) {
	assert.Equal(t, "", GenerateRequest{}.Text())
	assert.Equal(t, "ARICA\nIQUIQUE", GenerateRequest{Input: "ARICA\nIQUIQUE"}.Text())
	assert.Equal(t, "ARICA\nIQUIQUE\nCALAMA",
		GenerateRequest{Input: "ARICA\nIQUIQUE", Names: []string{"CALAMA"}}.Text())
}

func TestNewGenerateResponse(t *testing.T) {
	empty := NewGenerateResponse(nil)
	assert.NotNil(t, empty.Outcomes)
	assert.Empty(t, empty.Outcomes)

	resp := NewGenerateResponse(&syncer.GenerateReport{Outcomes: []syncer.GenerateOutcome{
		{Location: "ARICA", Outcome: syncer.OutcomeCreated, State: syncer.StateSynced},
		{Location: "IQUIQUE", Outcome: syncer.OutcomeSkipped, Notice: "already exists"},
		{Location: "CALAMA", Outcome: syncer.OutcomeFailed, Error: "provider down"},
	}})
	assert.Equal(t, 1, resp.Created)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, 1, resp.Failed)

	text := resp.RenderText()
	assert.Contains(t, text, "created ARICA")
	assert.Contains(t, text, "skipped IQUIQUE: already exists")
	assert.Contains(t, text, "failed  CALAMA: provider down")
	assert.Contains(t, text, "1 created, 1 skipped, 1 failed")
}

func TestGenerationsQueryRoundTrip(t *testing.T) {
	q := GenerationsQuery("ARICA", "destino.user", "mock", "gpt-4", false, true, 10, 5)
	filter, err := ParseGenerationsQuery(q)
	require.NoError(t, err)

	assert.Equal(t, "ARICA", filter.Location)
	assert.Equal(t, "destino.user", filter.PromptKey)
	assert.Equal(t, "mock", filter.Provider)
	assert.Equal(t, "gpt-4", filter.Model)
	require.NotNil(t, filter.Success)
	assert.False(t, *filter.Success)
	assert.Equal(t, 10, filter.Limit)
	assert.Equal(t, 5, filter.Offset)

	empty, err := ParseGenerationsQuery(GenerationsQuery("", "", "", "", false, false, 0, 0))
	require.NoError(t, err)
	assert.Nil(t, empty.Success)
	assert.Nil(t, empty.After)
}

func TestParseGenerationsQueryErrors(t *testing.T) {
	for _, raw := range []string{
		"success=maybe",
		"limit=ten",
		"offset=-x",
		"after=yesterday",
		"before=2024-13-01",
	} {
		t.Run(raw, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/generations?"+raw, nil)
			_, err := ParseGenerationsQuery(req.URL.Query())
			assert.Error(t, err)
		})
	}
}

func TestWriteSyncError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: ARICA", syncer.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: LOCATION is empty", syncer.ErrInvalidRecord), http.StatusBadRequest},
		{fmt.Errorf("push: %w", syncer.ErrCollaboratorUnavailable), http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeSyncError(rec, tt.err)
		assert.Equal(t, tt.code, rec.Code, tt.err.Error())

		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tt.err.Error(), body.Error)
	}
}

func TestDestinationPath(t *testing.T) {
	assert.Equal(t, "/api/destinations/ARICA", destinationPath("ARICA"))
	assert.Equal(t, "/api/destinations/LA%20SERENA", destinationPath("LA SERENA"))
	assert.Equal(t, "/api/destinations/A%2FB", destinationPath("A/B"))
}

func TestReadNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(path, []byte("ARICA\nIQUIQUE\n"), 0o644))

	text, err := ReadNames(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ARICA", "IQUIQUE"}, syncer.ParseNames(text))

	_, err = ReadNames(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestSchemaResponse(t *testing.T) {
	resp := NewSchemaResponse()
	require.NotEmpty(t, resp.Fields)
	assert.True(t, json.Valid(resp.JSONSchema))
	assert.True(t, strings.Contains(resp.RenderText(), "LOCATION"))
}

func TestStatusResponseShowsMirrorError(t *testing.T) {
	resp := StatusResponse{
		Server: "running",
		Sync: syncer.Status{
			State:       syncer.StateLocalOnly,
			RemoteError: "collaborator unavailable: sheets mirror: read token: no such file",
		},
	}
	assert.Contains(t, resp.RenderText(), "Mirror:   collaborator unavailable: sheets mirror: read token")

	resp.Sync.RemoteError = ""
	assert.NotContains(t, resp.RenderText(), "Mirror:")
}

func TestShortHash(t *testing.T) {
	assert.Equal(t, "abc", shortHash("abc"))
	assert.Equal(t, "0123456789ab", shortHash("0123456789abcdef"))
}
