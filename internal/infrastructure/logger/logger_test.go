package logger

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Level: "info", Format: "json"}, &buf)

	l.Debug("hidden")
	l.Info("visible", zap.Int64("channel_id", 3))
	require.NoError(t, l.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"visible"`)
	assert.Contains(t, out, `"channel_id":3`)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	l.Info("written")
	require.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestNew_BadOutput(t *testing.T) {
	_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
	assert.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	t.Run("falls back to nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("adds identifiers", func(t *testing.T) {
		ctx := WithContext(context.Background(), zap.New(core))
		ctx = WithRequestID(ctx, "req_1")
		ctx = WithChannelID(ctx, 2)
		ctx = WithCustomerID(ctx, 9)

		L(ctx).Info("hello")

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "req_1", fields["request_id"])
		assert.Equal(t, int64(2), fields["channel_id"])
		assert.Equal(t, int64(9), fields["customer_id"])
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "req_abc"); c.Next() })
	r.Use(GinMiddleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) {
		assert.Equal(t, "req_abc", RequestID(c.Request.Context()))
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/ok", "/missing"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.TakeAll()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(404), entries[1].ContextMap()["status"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.ErrorLevel)

	r := gin.New()
	r.Use(Recovery(zap.New(core), func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"title": "Internal Server Error"})
	}))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal Server Error")
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, 50*time.Millisecond)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("record not found is silent", func(t *testing.T) {
		gl.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 0, logs.FilterMessage("sql error").Len())
	})

	t.Run("errors are logged", func(t *testing.T) {
		gl.Trace(context.Background(), time.Now(), sql, errors.New("syntax"))
		assert.Equal(t, 1, logs.FilterMessage("sql error").Len())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
		assert.Equal(t, 1, logs.FilterMessage("slow sql").Len())
	})

	t.Run("silent mode logs nothing", func(t *testing.T) {
		before := logs.Len()
		gl.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sql, errors.New("x"))
		assert.Equal(t, before, logs.Len())
	})
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, GormLevel("silent"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
}
