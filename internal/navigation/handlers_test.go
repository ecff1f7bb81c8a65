package navigation

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	wps, runs := testResort()
	app := fiber.New()
	RegisterRoutes(app.Group("/navigation"), newTestService(stubSource{wps: wps, runs: runs}))
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestNavigationPathHandler(t *testing.T) {
	app := newTestApp()

	resp := postJSON(t, app, "/navigation/path", planRequest{Start: "base", Dest: "mid", Difficulty: "Green"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Waypoints []struct {
			ID string `json:"id"`
		} `json:"waypoints"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Waypoints, 3)
	assert.Equal(t, "mid", out.Waypoints[2].ID)

	resp = postJSON(t, app, "/navigation/path", planRequest{Start: "base", Dest: "bowl", Difficulty: "Green"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = postJSON(t, app, "/navigation/path", planRequest{Start: "base", Dest: "base"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/navigation/smart-route", planRequest{Start: "base", Dest: "mid", Difficulty: "Purple"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNavigationQueryHandlers(t *testing.T) {
	app := newTestApp()

	cases := map[string]int{
		"/navigation/difficulties?start=base&dest=bowl": http.StatusOK,
		"/navigation/check?start=base&dest=mid":         http.StatusOK,
		"/navigation/closest?lat=46&lon=7&n=2":          http.StatusOK,
		"/navigation/closest?lat=abc&lon=7":             http.StatusBadRequest,
		"/navigation/poi?lat=46&lon=7&category=lodge":   http.StatusOK,
		"/navigation/poi?lat=46&lon=7&category=spa":     http.StatusNotFound,
		"/navigation/poi?lat=46&lon=7":                  http.StatusBadRequest,
	}
	for path, want := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
