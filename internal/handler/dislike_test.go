package handler_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bericyb/dislinkedIn/internal/handler"
	"github.com/bericyb/dislinkedIn/internal/middleware"
	"github.com/bericyb/dislinkedIn/internal/model"
	"github.com/bericyb/dislinkedIn/internal/repository"
	"github.com/bericyb/dislinkedIn/internal/router"
)

func newTestApp(t *testing.T, apiKey string) (*fiber.App, *repository.MemoryDislikeRepo) {
	t.Helper()
	middleware.InitLogger("disabled", "test")

	repo := repository.NewMemoryDislikeRepo()
	app := fiber.New(fiber.Config{
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	router.Setup(app, &router.Handlers{
		Dislike: handler.NewDislikeHandler(repo),
		Health:  handler.NewHealthHandler(nil, nil),
	}, router.Options{CORSOrigins: "*", APIKey: apiKey})
	return app, repo
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func decodeRows(t *testing.T, resp *http.Response) []model.DislikeRecord {
	t.Helper()
	var rows []model.DislikeRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	return rows
}

func TestDislikeHandler_InsertCreatesRecord(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, err := app.Test(jsonRequest(t, "POST", "/post_dislikes",
		model.InsertPayload{PostURN: "urn:li:activity:100", DislikeCount: 1}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	rows := decodeRows(t, resp)
	require.Len(t, rows, 1)
	assert.Equal(t, "urn:li:activity:100", rows[0].PostURN)
	assert.Equal(t, 1, rows[0].DislikeCount)
	assert.False(t, rows[0].CreatedAt.IsZero())
}

func TestDislikeHandler_InsertDefaultsCountToOne(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, err := app.Test(jsonRequest(t, "POST", "/post_dislikes",
		model.InsertPayload{PostURN: "urn:li:activity:101"}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	rows := decodeRows(t, resp)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].DislikeCount)
}

func TestDislikeHandler_InsertDuplicateConflicts(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, err := app.Test(jsonRequest(t, "POST", "/post_dislikes",
		model.InsertPayload{PostURN: "urn:li:activity:102", DislikeCount: 1}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "POST", "/post_dislikes",
		model.InsertPayload{PostURN: "urn:li:activity:102", DislikeCount: 1}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
}

func TestDislikeHandler_InsertRejectsBadURN(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, err := app.Test(jsonRequest(t, "POST", "/post_dislikes",
		model.InsertPayload{PostURN: "not-a-urn", DislikeCount: 1}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDislikeHandler_GetFilteredReturnsRowArray(t *testing.T) {
	app, repo := newTestApp(t, "")
	_, err := repo.Insert(t.Context(), "urn:li:activity:200", 4)
	require.NoError(t, err)

	resp, err := app.Test(jsonRequest(t, "GET", "/post_dislikes?post_urn=eq.urn:li:activity:200", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	rows := decodeRows(t, resp)
	require.Len(t, rows, 1)
	assert.Equal(t, 4, rows[0].DislikeCount)
}

func TestDislikeHandler_GetMissIsEmptyArray(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, err := app.Test(jsonRequest(t, "GET", "/post_dislikes?post_urn=eq.urn:li:activity:299", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Empty(t, decodeRows(t, resp))
}

func TestDislikeHandler_GetRejectsUnsupportedFilter(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, err := app.Test(jsonRequest(t, "GET", "/post_dislikes?post_urn=gt.urn:li:activity:1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDislikeHandler_ListAllWithLimit(t *testing.T) {
	app, repo := newTestApp(t, "")
	for _, urn := range []string{"urn:li:activity:301", "urn:li:activity:302", "urn:li:activity:303"} {
		_, err := repo.Insert(t.Context(), urn, 1)
		require.NoError(t, err)
	}

	resp, err := app.Test(jsonRequest(t, "GET", "/post_dislikes", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decodeRows(t, resp), 3)

	resp, err = app.Test(jsonRequest(t, "GET", "/post_dislikes?limit=2", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decodeRows(t, resp), 2)
}

func TestDislikeHandler_UpdateCount(t *testing.T) {
	app, repo := newTestApp(t, "")
	_, err := repo.Insert(t.Context(), "urn:li:activity:400", 1)
	require.NoError(t, err)

	resp, err := app.Test(jsonRequest(t, "PATCH", "/post_dislikes?post_urn=eq.urn:li:activity:400",
		model.UpdatePayload{DislikeCount: 7}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	rec, err := repo.Get(t.Context(), "urn:li:activity:400")
	require.NoError(t, err)
	assert.Equal(t, 7, rec.DislikeCount)
	assert.False(t, rec.UpdatedAt.IsZero())
}

func TestDislikeHandler_UpdateAbsentRowStillSucceeds(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, err := app.Test(jsonRequest(t, "PATCH", "/post_dislikes?post_urn=eq.urn:li:activity:404",
		model.UpdatePayload{DislikeCount: 2}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestDislikeHandler_UpdateRequiresFilter(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, err := app.Test(jsonRequest(t, "PATCH", "/post_dislikes",
		model.UpdatePayload{DislikeCount: 2}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestDislikeHandler_DeleteRemovesRow(t *testing.T) {
	app, repo := newTestApp(t, "")
	_, err := repo.Insert(t.Context(), "urn:li:activity:500", 3)
	require.NoError(t, err)

	resp, err := app.Test(jsonRequest(t, "DELETE", "/post_dislikes?post_urn=eq.urn:li:activity:500", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	_, err = repo.Get(t.Context(), "urn:li:activity:500")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDislikeHandler_DeleteAbsentRowIsNoOp(t *testing.T) {
	app, _ := newTestApp(t, "")

	resp, err := app.Test(jsonRequest(t, "DELETE", "/post_dislikes?post_urn=eq.urn:li:activity:505", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestDislikeHandler_APIKeyAuth(t *testing.T) {
	app, _ := newTestApp(t, "secret-key")

	// No credentials.
	resp, err := app.Test(jsonRequest(t, "GET", "/post_dislikes?post_urn=eq.urn:li:activity:600", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// apikey header, PostgREST style.
	req := jsonRequest(t, "GET", "/post_dislikes?post_urn=eq.urn:li:activity:600", nil)
	req.Header.Set("apikey", "secret-key")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Bearer token.
	req = jsonRequest(t, "GET", "/post_dislikes?post_urn=eq.urn:li:activity:600", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Wrong key.
	req = jsonRequest(t, "GET", "/post_dislikes?post_urn=eq.urn:li:activity:600", nil)
	req.Header.Set("apikey", "wrong-key")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestHealthHandler_Probes(t *testing.T) {
	app, _ := newTestApp(t, "secret-key")

	// Probes bypass auth.
	resp, err := app.Test(jsonRequest(t, "GET", "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, "GET", "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}
