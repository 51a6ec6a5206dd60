package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/semdex/internal/domain"
)

// maxBodyBytes bounds request bodies of the write endpoints.
const maxBodyBytes = 16 << 20

// domainErrors maps each sentinel to its HTTP answer. Clients only ever see
// the sentinel's own message.
var domainErrors = []struct {
	sentinel error
	status   int
	code     errorCode
}{
	{domain.ErrInvalidRequest, http.StatusBadRequest, codeValidationFailed},
	{domain.ErrUnsupportedFilter, http.StatusBadRequest, codeUnsupportedFilter},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderError},
	{domain.ErrStoreRejected, http.StatusBadGateway, codeStoreRejected},
	{domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable},
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	for _, m := range domainErrors {
		if errors.Is(err, m.sentinel) {
			s.logger.Warn("request failed", zap.String("code", string(m.code)), zap.Error(err))
			writeError(w, m.status, m.code, m.sentinel.Error())
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// decodeBody reads a JSON body into v. On failure it writes the 400 itself
// and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	switch {
	case err == nil:
		return true
	case errors.Is(err, io.EOF):
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: body is empty")
	default:
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: decode: "+err.Error())
	}
	return false
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.Tokens()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
