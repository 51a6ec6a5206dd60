package chi

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/semdex/internal/domain"
)

func TestWriteDomainError_LogLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewServer(nil, nil, nil, "artist", zap.New(core))

	rr := httptest.NewRecorder()
	s.writeDomainError(rr, fmt.Errorf("search: %w", domain.ErrStoreUnavailable))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.writeDomainError(rr, errors.New("nil map write"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}

	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Errorf("warn entries = %d, want 1", n)
	}
	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 1 {
		t.Errorf("error entries = %d, want 1", n)
	}
}

func TestDecodeBody_Empty(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/addDocuments", http.NoBody)

	var v []string
	if decodeBody(rr, req, &v) {
		t.Fatal("empty body must not decode")
	}
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}
