package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/kiesman99/panorama/internal/api"
	"github.com/kiesman99/panorama/internal/stitcher"
	"github.com/kiesman99/panorama/pkg/tile"
)

// Test server setup
func setupTestServer() (*httptest.Server, *tile.Processor) {
	proc := tile.NewProcessor(afero.NewMemMapFs())
	apiServer := NewServer("2.0.0-test", stitcher.New(proc, nil), nil)
	return httptest.NewServer(NewRouter(apiServer, 30*time.Second)), proc
}

func writeImage(t *testing.T, proc *tile.Processor, path string, w, h int) {
	t.Helper()
	buf := tile.NewBuffer(w, h)
	buf.Fill(0, 0, w, h, [4]byte{120, 60, 30, 255})
	if err := proc.Save(path, buf); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if str, ok := body.(string); ok {
		reader = strings.NewReader(str)
	} else if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request: %v", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	resp, err := http.Post(url, "application/json", reader)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

func expectError(t *testing.T, resp *http.Response, status int, code string) map[string]interface{} {
	t.Helper()

	if resp.StatusCode != status {
		responseBody, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d. Body: %s", status, resp.StatusCode, string(responseBody))
	}

	var errorResp map[string]interface{}
	decodeBody(t, resp, &errorResp)
	if errorCode, ok := errorResp["error"].(string); !ok || errorCode != code {
		t.Errorf("Expected error code %s, got %v", code, errorResp["error"])
	}
	if id, ok := errorResp["request_id"].(string); !ok || id == "" {
		t.Errorf("Expected request_id in error response, got %v", errorResp["request_id"])
	}
	return errorResp
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := setupTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	// Check status code
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	// Check content type
	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", contentType)
	}

	var healthResp api.HealthResponse
	decodeBody(t, resp, &healthResp)

	if healthResp.Status != api.Healthy {
		t.Errorf("Expected status 'healthy', got %s", healthResp.Status)
	}

	if healthResp.Version == nil || *healthResp.Version != "2.0.0-test" {
		t.Errorf("Expected version '2.0.0-test', got %v", healthResp.Version)
	}

	if healthResp.Uptime == nil || *healthResp.Uptime < 0 {
		t.Errorf("Expected valid uptime, got %v", healthResp.Uptime)
	}

	// Check timestamp is recent
	if time.Since(healthResp.Timestamp) > time.Minute {
		t.Errorf("Timestamp seems too old: %v", healthResp.Timestamp)
	}
}

func TestLegacyHealthRedirect(t *testing.T) {
	server, _ := setupTestServer()
	defer server.Close()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMovedPermanently {
		t.Errorf("Expected status 301, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/api/v1/health" {
		t.Errorf("Expected redirect to /api/v1/health, got %s", loc)
	}
}

func TestCORSHeaders(t *testing.T) {
	server, _ := setupTestServer()
	defer server.Close()

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/v1/shift", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	expectedHeaders := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, X-API-Key",
	}
	for header, want := range expectedHeaders {
		if got := resp.Header.Get(header); got != want {
			t.Errorf("Expected %s header %q, got %q", header, want, got)
		}
	}
}

func TestShiftEndpoint_Success(t *testing.T) {
	server, proc := setupTestServer()
	defer server.Close()
	writeImage(t, proc, "/work/cat.png", tile.Size, tile.Size)

	resp := postJSON(t, server.URL+"/api/v1/shift", api.ShiftRequest{
		Source:     "/work/cat.png",
		Directions: []api.Direction{api.LEFT, api.DOWN},
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(responseBody))
	}

	var shiftResp api.ShiftResponse
	decodeBody(t, resp, &shiftResp)

	want := []string{"/work/cat_RIGHT.png", "/work/cat_UP.png"}
	if len(shiftResp.Artifacts) != len(want) {
		t.Fatalf("Expected %d artifacts, got %v", len(want), shiftResp.Artifacts)
	}
	for i, p := range want {
		if shiftResp.Artifacts[i] != p {
			t.Errorf("Artifact %d: expected %s, got %s", i, p, shiftResp.Artifacts[i])
		}
		if ok, _ := proc.Exists(p); !ok {
			t.Errorf("Expected %s to be written", p)
		}
	}
}

func TestShiftEndpoint_ValidationErrors(t *testing.T) {
	server, proc := setupTestServer()
	defer server.Close()
	writeImage(t, proc, "/work/cat.png", tile.Size, tile.Size)

	testCases := []struct {
		name           string
		request        interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Invalid JSON",
			request:        "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "INVALID_JSON",
		},
		{
			name:           "Missing source",
			request:        api.ShiftRequest{Directions: []api.Direction{api.LEFT}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "No directions",
			request:        api.ShiftRequest{Source: "/work/cat.png"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Unknown direction",
			request:        api.ShiftRequest{Source: "/work/cat.png", Directions: []api.Direction{"NORTH"}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Missing source image",
			request:        api.ShiftRequest{Source: "/work/dog.png", Directions: []api.Direction{api.UP}},
			expectedStatus: http.StatusNotFound,
			expectedError:  "SOURCE_NOT_FOUND",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, server.URL+"/api/v1/shift", tc.request)
			defer resp.Body.Close()
			expectError(t, resp, tc.expectedStatus, tc.expectedError)
		})
	}
}

func TestCombineEndpoint(t *testing.T) {
	server, proc := setupTestServer()
	defer server.Close()
	writeImage(t, proc, "/work/cat.png", tile.Size, tile.Size)

	request := api.CombineRequest{
		Source:     "/work/cat.png",
		Directions: []api.Direction{api.RIGHT},
	}

	// Nothing has been completed yet
	resp := postJSON(t, server.URL+"/api/v1/combine", request)
	errorResp := expectError(t, resp, http.StatusConflict, "DONE_MISSING")
	resp.Body.Close()

	details, ok := errorResp["details"].(map[string]interface{})
	if !ok || details["path"] != "/work/cat_LEFT_done.png" {
		t.Errorf("Expected details.path /work/cat_LEFT_done.png, got %v", errorResp["details"])
	}

	writeImage(t, proc, "/work/cat_LEFT_done.png", tile.Size, tile.Size)

	resp = postJSON(t, server.URL+"/api/v1/combine", request)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		responseBody, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(responseBody))
	}

	var combineResp api.CombineResponse
	decodeBody(t, resp, &combineResp)
	if combineResp.Output != "/work/cat_full.png" {
		t.Errorf("Expected output /work/cat_full.png, got %s", combineResp.Output)
	}

	full, err := proc.Load(combineResp.Output)
	if err != nil {
		t.Fatalf("Failed to load output: %v", err)
	}
	if full.Width != tile.Size+tile.ShiftSize || full.Height != tile.Size {
		t.Errorf("Expected %dx%d canvas, got %dx%d", tile.Size+tile.ShiftSize, tile.Size, full.Width, full.Height)
	}
}

func TestCombineEndpoint_ShapeMismatch(t *testing.T) {
	server, proc := setupTestServer()
	defer server.Close()
	writeImage(t, proc, "/work/cat.png", tile.Size, tile.Size)
	writeImage(t, proc, "/work/cat_DOWN_done.png", tile.Size, 300)

	resp := postJSON(t, server.URL+"/api/v1/combine", api.CombineRequest{
		Source:     "/work/cat.png",
		Directions: []api.Direction{api.UP},
	})
	defer resp.Body.Close()
	expectError(t, resp, http.StatusUnprocessableEntity, "SHAPE_MISMATCH")
}

func TestSessionLifecycle(t *testing.T) {
	server, proc := setupTestServer()
	defer server.Close()
	writeImage(t, proc, "/work/cat.png", tile.Size, tile.Size)

	resp := postJSON(t, server.URL+"/api/v1/sessions", api.CreateSessionRequest{
		Source: "/work/cat.png",
		Group:  api.UpDown,
	})
	if resp.StatusCode != http.StatusCreated {
		responseBody, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201, got %d. Body: %s", resp.StatusCode, string(responseBody))
	}
	var session api.Session
	decodeBody(t, resp, &session)
	resp.Body.Close()

	if session.State != api.AwaitingFirstTile {
		t.Errorf("Expected state %s, got %s", api.AwaitingFirstTile, session.State)
	}
	if session.Parts["UP"] != 1 || session.Parts["DOWN"] != 1 {
		t.Errorf("Expected one part per direction, got %v", session.Parts)
	}
	if session.Pending != nil {
		t.Errorf("Expected no pending tile, got %s", *session.Pending)
	}

	readyURL := server.URL + "/api/v1/sessions/" + session.Id.String() + "/ready"
	ready := func() *http.Response {
		return postJSON(t, readyURL, nil)
	}

	steps := []struct {
		direction api.Direction
		pending   string
	}{
		{api.UP, "/work/cat_DOWN_000.png"},
		{api.DOWN, "/work/cat_UP_000.png"},
	}
	for _, step := range steps {
		resp = ready()
		if resp.StatusCode != http.StatusOK {
			responseBody, _ := io.ReadAll(resp.Body)
			t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(responseBody))
		}
		decodeBody(t, resp, &session)
		resp.Body.Close()

		if session.State != api.AwaitingNextTile {
			t.Fatalf("Expected state %s, got %s", api.AwaitingNextTile, session.State)
		}
		if session.Direction == nil || *session.Direction != step.direction {
			t.Errorf("Expected direction %s, got %v", step.direction, session.Direction)
		}
		if session.Pending == nil || *session.Pending != step.pending {
			t.Fatalf("Expected pending %s, got %v", step.pending, session.Pending)
		}

		// The generator has not delivered yet
		resp = ready()
		expectError(t, resp, http.StatusConflict, "DONE_MISSING")
		resp.Body.Close()

		writeImage(t, proc, tile.DonePath(step.pending), tile.Size, tile.Size)
	}

	resp = ready()
	decodeBody(t, resp, &session)
	resp.Body.Close()
	if session.State != api.AllDirectionsComplete {
		t.Fatalf("Expected state %s, got %s", api.AllDirectionsComplete, session.State)
	}
	if session.Output == nil || *session.Output != "/work/cat_full.png" {
		t.Errorf("Expected output /work/cat_full.png, got %v", session.Output)
	}

	full, err := proc.Load("/work/cat_full.png")
	if err != nil {
		t.Fatalf("Failed to load output: %v", err)
	}
	if full.Width != tile.Size || full.Height != tile.Size+2*tile.ShiftSize {
		t.Errorf("Expected %dx%d canvas, got %dx%d", tile.Size, tile.Size+2*tile.ShiftSize, full.Width, full.Height)
	}

	resp = ready()
	expectError(t, resp, http.StatusConflict, "SESSION_COMPLETE")
	resp.Body.Close()

	getResp, err := http.Get(server.URL + "/api/v1/sessions/" + session.Id.String())
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer getResp.Body.Close()
	var fetched api.Session
	decodeBody(t, getResp, &fetched)
	if fetched.State != api.AllDirectionsComplete {
		t.Errorf("Expected state %s, got %s", api.AllDirectionsComplete, fetched.State)
	}
}

func TestSessionEndpoint_Errors(t *testing.T) {
	server, proc := setupTestServer()
	defer server.Close()
	writeImage(t, proc, "/work/cat.png", tile.Size, tile.Size)

	t.Run("Unknown session", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/api/v1/sessions/" + uuid.NewString())
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}
		defer resp.Body.Close()
		expectError(t, resp, http.StatusNotFound, "SESSION_NOT_FOUND")
	})

	t.Run("Malformed session id", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/v1/sessions/not-a-uuid/ready", nil)
		defer resp.Body.Close()
		errorResp := expectError(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")
		fields, _ := errorResp["validation_errors"].([]interface{})
		if len(fields) != 1 || fields[0].(map[string]interface{})["field"] != "sessionId" {
			t.Errorf("Expected a sessionId validation error, got %v", errorResp["validation_errors"])
		}
	})

	t.Run("Unknown group", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/v1/sessions", api.CreateSessionRequest{
			Source: "/work/cat.png",
			Group:  "diagonal",
		})
		defer resp.Body.Close()
		expectError(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")
	})

	t.Run("Source the tiles cannot cover", func(t *testing.T) {
		writeImage(t, proc, "/work/short.png", tile.Size, 1500)
		resp := postJSON(t, server.URL+"/api/v1/sessions", api.CreateSessionRequest{
			Source: "/work/short.png",
			Group:  api.LeftRight,
		})
		defer resp.Body.Close()
		expectError(t, resp, http.StatusUnprocessableEntity, "SHAPE_MISMATCH")
		if ok, _ := proc.Exists("/work/short_RIGHT_000.png"); ok {
			t.Errorf("Expected no tile to be written for a rejected source")
		}
	})

	t.Run("Missing source image", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/api/v1/sessions", api.CreateSessionRequest{
			Source: "/work/dog.png",
			Group:  api.LeftRight,
		})
		defer resp.Body.Close()
		expectError(t, resp, http.StatusNotFound, "SOURCE_NOT_FOUND")
	})
}
