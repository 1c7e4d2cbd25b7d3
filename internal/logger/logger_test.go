package logger

import (
	"bytes"
	"context"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestFormatFields(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		want   string
	}{
		{"empty", nil, ""},
		{"sorted keys", Fields{"b": 2, "a": "x"}, "{a=x, b=2}"},
		{"floats", Fields{"bpm": 120.0}, "{bpm=120.00}"},
		{"other types", Fields{"ok": true, "n": int64(7)}, "{n=7, ok=true}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatFields(tt.fields))
		})
	}
}

func TestLevels(t *testing.T) {
	buf := captureLog(t)

	Info("hello", Fields{"k": "v"})
	Warn("careful", nil)
	Debug("detail", nil)
	Error("boom", assert.AnError, Fields{"request_id": "r1"})

	out := buf.String()
	assert.Contains(t, out, "[INFO] hello {k=v}")
	assert.Contains(t, out, "[WARN] careful")
	assert.Contains(t, out, "[DEBUG] detail")
	assert.Contains(t, out, "[ERROR] boom: "+assert.AnError.Error())
}

func TestLogRenderRequest(t *testing.T) {
	buf := captureLog(t)

	LogRenderRequest(context.Background(), 1500*time.Millisecond, Fields{"render_id": "abc"})
	assert.Contains(t, buf.String(), "Render completed")
	assert.Contains(t, buf.String(), "duration_ms=1500")
	assert.Contains(t, buf.String(), "render_id=abc")
}

func TestWithContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/v1/render/script", nil)
	c.Set("request_id", "req-1")
	c.Set("user_id", "u-9")

	fields := WithContext(c)
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/v1/render/script", fields["path"])
	assert.Equal(t, "u-9", fields["user_id"])
}
