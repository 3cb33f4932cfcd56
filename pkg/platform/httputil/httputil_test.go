package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "uwgate/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantDetail bool
	}{
		{"validation maps to 400", dErrors.New(dErrors.CodeValidation, "bad field"), http.StatusBadRequest, true},
		{"invalid input maps to 400", dErrors.New(dErrors.CodeInvalidInput, "bad rule"), http.StatusBadRequest, true},
		{"not found maps to 404", dErrors.New(dErrors.CodeNotFound, "missing"), http.StatusNotFound, true},
		{"conflict maps to 409", dErrors.New(dErrors.CodeConflict, "dup"), http.StatusConflict, true},
		{"unauthorized maps to 401", dErrors.New(dErrors.CodeUnauthorized, "no token"), http.StatusUnauthorized, true},
		{"unavailable maps to 503", dErrors.New(dErrors.CodeUnavailable, "redis down"), http.StatusServiceUnavailable, true},
		{"internal maps to 500 without detail", dErrors.New(dErrors.CodeInternal, "secret detail"), http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp struct {
				Error       string `json:"error"`
				Description string `json:"error_description"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			if tt.wantDetail {
				assert.NotEmpty(t, resp.Description)
			} else {
				assert.Empty(t, resp.Description, "internal details must not leak")
			}
		})
	}
}

type sampleRequest struct {
	Name string `json:"name"`
}

func (r *sampleRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("decodes and validates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"name":"x"}`)))
		rec := httptest.NewRecorder()

		parsed, ok := DecodeAndPrepare[sampleRequest](rec, req, logger, context.Background(), "rid")
		require.True(t, ok)
		assert.Equal(t, "x", parsed.Name)
	})

	t.Run("malformed body writes a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{`)))
		rec := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[sampleRequest](rec, req, logger, context.Background(), "rid")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation failure writes the domain error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{}`)))
		rec := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[sampleRequest](rec, req, logger, context.Background(), "rid")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "name is required")
	})
}
