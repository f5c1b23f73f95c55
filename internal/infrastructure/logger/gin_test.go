package logger

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(log *zap.Logger, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), GinMiddleware(log), Recovery(log))
	r.GET("/test", h)
	return r
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates id", func(t *testing.T) {
		var seen string
		r := newRouter(zap.NewNop(), func(c *gin.Context) {
			seen = RequestID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(HeaderRequestID))
	})

	t.Run("reuses inbound id and operator", func(t *testing.T) {
		var requestID, operator string
		r := newRouter(zap.NewNop(), func(c *gin.Context) {
			requestID = RequestID(c.Request.Context())
			operator = OperatorID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		req.Header.Set(HeaderOperatorID, "2b1d3f0e-8f51-4c6a-b2a8-6c2bb0a1e9f4")
		r.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, "abc-123", requestID)
		assert.Equal(t, "2b1d3f0e-8f51-4c6a-b2a8-6c2bb0a1e9f4", operator)
	})

	t.Run("replaces oversized id and ignores malformed operator", func(t *testing.T) {
		var requestID, operator string
		r := newRouter(zap.NewNop(), func(c *gin.Context) {
			requestID = RequestID(c.Request.Context())
			operator = OperatorID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(HeaderRequestID, strings.Repeat("x", 500))
		req.Header.Set(HeaderOperatorID, "bob")
		r.ServeHTTP(httptest.NewRecorder(), req)

		assert.Len(t, requestID, 36)
		assert.Empty(t, operator)
	})
}

func TestGinMiddleware_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusConflict, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			r := newRouter(zap.New(core), func(c *gin.Context) {
				GetGinLogger(c).Debug("inside handler")
				c.Status(tt.status)
			})

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test?page=2", nil))

			access := recorded.FilterMessage("HTTP Request").All()
			require.Len(t, access, 1)
			assert.Equal(t, tt.level, access[0].Level)
			assert.Equal(t, "page=2", access[0].ContextMap()["query"])
			assert.NotEmpty(t, access[0].ContextMap()["request_id"])
			assert.Equal(t, 1, recorded.FilterMessage("inside handler").Len())
		})
	}
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	r := newRouter(zap.New(core), func(c *gin.Context) {
		panic("ledger exploded")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
	assert.Equal(t, 1, recorded.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}
