package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/rentaldesk/searchsync/internal/search/usecase/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestContext creates a test Gin context with an optional JSON body.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = bytes.NewReader([]byte(b))
	default:
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	return c, w
}

func setupIndexHandler(t *testing.T) (*IndexHandler, *mocks.MockSyncUseCase, *mocks.MockReindexJobManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	syncUseCase := mocks.NewMockSyncUseCase(t)
	jobs := mocks.NewMockReindexJobManager(t)
	return NewIndexHandler(syncUseCase, jobs, discardLogger()), syncUseCase, jobs
}

func setupEventHandler(t *testing.T) (*EventHandler, *mocks.MockSyncUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	syncUseCase := mocks.NewMockSyncUseCase(t)
	return NewEventHandler(syncUseCase, discardLogger()), syncUseCase
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
}
