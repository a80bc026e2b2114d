package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
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

func TestNew(t *testing.T) {
	t.Run("Production", func(t *testing.T) {
		l, err := New("production", "")
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("Development", func(t *testing.T) {
		l, err := New("development", "")
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("Level override", func(t *testing.T) {
		l, err := New("development", "warn")
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("Bad level", func(t *testing.T) {
		_, err := New("production", "loud")
		assert.Error(t, err)
	})
}

func TestInitAndUse(t *testing.T) {
	restore := Use(nil)
	defer restore()

	t.Setenv("APP_ENV", "test")
	assert.NotNil(t, L(), "built lazily")

	require.NoError(t, Init("production", "error"))
	assert.False(t, L().Core().Enabled(zapcore.WarnLevel))
	assert.Error(t, Init("production", "loud"))

	core, observed := observer.New(zapcore.InfoLevel)
	undo := Use(zap.New(core))
	L().Info("captured")
	undo()
	L().Info("not captured")
	assert.Equal(t, 1, observed.Len())
}

func TestRequestIDFrom(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestIDFrom(ctx))
	assert.Equal(t, "", RequestIDFrom(context.Background()))
}

func TestFromCtx(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	defer Use(zap.New(core))()

	FromCtx(WithRequestID(context.Background(), "req-abc")).Info("with id")
	FromCtx(context.Background()).Info("without id")

	logs := observed.TakeAll()
	assert.Len(t, logs, 2)
	assert.Equal(t, "req-abc", logs[0].ContextMap()["request_id"])
	_, ok := logs[1].ContextMap()["request_id"]
	assert.False(t, ok)
}

func TestMiddleware(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	defer Use(zap.New(core))()

	r := gin.New()
	r.Use(RequestID(), Access())
	r.GET("/ping", func(c *gin.Context) {
		assert.NotEmpty(t, RequestIDFrom(c.Request.Context()))
		c.Status(http.StatusTeapot)
	})

	t.Run("Generates ID when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		logs := observed.TakeAll()
		assert.Len(t, logs, 1)
		assert.Equal(t, "incoming request", logs[0].Message)
		assert.Equal(t, "/ping", logs[0].ContextMap()["path"])
		assert.EqualValues(t, http.StatusTeapot, logs[0].ContextMap()["status"])
	})

	t.Run("Preserves existing ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "fixed-id")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
		logs := observed.TakeAll()
		assert.Equal(t, "fixed-id", logs[0].ContextMap()["request_id"])
	})
}
