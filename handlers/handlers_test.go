package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"game-ledger/middleware"
	"game-ledger/services"
	"game-ledger/store"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "gateway-secret"

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.GatewayAuthMiddleware(testToken))
	SetupLedgerRoutes(app, services.NewEngine(store.NewMemory(), clockwork.NewFakeClock()))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, user, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestGatewayTokenRequired(t *testing.T) {
	app := newTestApp()
	req := httptest.NewRequest(http.MethodGet, "/lobby", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer nope")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestOperationsNeedCaller(t *testing.T) {
	app := newTestApp()
	status, _ := do(t, app, http.MethodPost, "/operations", "", `{"kind":"DepositTokens","amount":5}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestPlayAGameOverHTTP(t *testing.T) {
	app := newTestApp()

	status, body := do(t, app, http.MethodPost, "/operations", "alice", `{"kind":"CreateMatch","room_name":"Center Court"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "OkWithData", body["kind"])
	assert.Equal(t, "0", body["data"])

	status, body = do(t, app, http.MethodPost, "/operations", "bob", `{"kind":"JoinGame","room_id":0}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "GameState", body["kind"])

	status, body = do(t, app, http.MethodPost, "/operations", "bob", `{"kind":"MakeMove","room_id":0,"position":4}`)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Error", body["kind"])
	errBody := body["error"].(map[string]any)
	assert.Equal(t, "AuthError", errBody["kind"])

	status, _ = do(t, app, http.MethodPost, "/operations", "alice", `{"kind":"MakeMove","room_id":0,"position":4}`)
	require.Equal(t, fiber.StatusOK, status)

	status, body = do(t, app, http.MethodGet, "/rooms/0/board", "", "")
	require.Equal(t, fiber.StatusOK, status)
	board := body["board"].([]any)
	assert.Equal(t, "X", board[4])
	assert.Equal(t, "bob", body["current_player"])

	status, body = do(t, app, http.MethodGet, "/lobby", "", "")
	require.Equal(t, fiber.StatusOK, status)
	rooms := body["rooms"].([]any)
	require.Len(t, rooms, 1)
	assert.Equal(t, "center-court", rooms[0].(map[string]any)["slug"])
}

func TestOperationDecodingErrors(t *testing.T) {
	app := newTestApp()

	status, body := do(t, app, http.MethodPost, "/operations", "alice", `{"kind":"Teleport"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "ValidationError", body["kind"])

	status, _ = do(t, app, http.MethodPost, "/operations", "alice", `not json`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestQueryErrors(t *testing.T) {
	app := newTestApp()

	status, body := do(t, app, http.MethodGet, "/rooms/7/board", "", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NotFound", body["kind"])

	status, _ = do(t, app, http.MethodGet, "/rooms/abc/board", "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodGet, "/tournaments?status=paused", "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodGet, "/leaderboard?limit=500", "", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = do(t, app, http.MethodGet, "/players/nobody/balance", "", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 0, body["balance"])
}
