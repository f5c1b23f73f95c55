package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type pingFunc func() error

func (f pingFunc) Ping() error { return f() }

func TestSystemHandler_Health(t *testing.T) {
	t.Run("all up", func(t *testing.T) {
		h := NewSystemHandler(zap.NewNop(), map[string]Pinger{
			"database": pingFunc(func() error { return nil }),
		})
		r := newTestRouter()
		r.GET("/health", h.Health)

		w := performRequest(r, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got HealthResponse
		decodeData(t, w, &got)
		assert.Equal(t, "ok", got.Status)
		assert.Equal(t, "up", got.Checks["database"])
	})

	t.Run("database down", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		h := NewSystemHandler(zap.New(core), map[string]Pinger{
			"database": pingFunc(func() error { return errors.New("connection refused") }),
			"redis":    pingFunc(func() error { return nil }),
		})
		r := newTestRouter()
		r.GET("/health", h.Health)

		w := performRequest(r, http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)

		var envelope struct {
			Data HealthResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Equal(t, "degraded", envelope.Data.Status)
		assert.Equal(t, "down", envelope.Data.Checks["database"])
		assert.Equal(t, "up", envelope.Data.Checks["redis"])
		assert.Equal(t, 1, logs.FilterMessage("Health check failed").Len())
	})
}
