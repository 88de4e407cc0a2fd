package tracing

import (
	"context"
	"errors"
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

func newObservedTracer() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New("linksan-test", zap.New(core)), logs
}

func TestStartSpan(t *testing.T) {
	tracer, _ := newObservedTracer()
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	assert.True(t, strings.HasPrefix(string(root.TraceID), "trace_"))
	assert.True(t, strings.HasPrefix(string(root.SpanID), "span_"))
	assert.Empty(t, root.ParentID)

	child, childCtx := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.Equal(t, child.SpanID, GetSpanID(childCtx))
	assert.Equal(t, root.TraceID, GetTraceID(childCtx))
}

func TestSpanCollected(t *testing.T) {
	tracer, logs := newObservedTracer()

	span, _ := tracer.StartSpan(context.Background(), "ok")
	span.SetStatus(200)
	span.Finish()
	tracer.Submit(span)

	failed, _ := tracer.StartSpan(context.Background(), "failed")
	failed.SetError(errors.New("boom"))
	failed.Finish()
	tracer.Submit(failed)

	tracer.Close()

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "span completed", logs.All()[0].Message)
	assert.Equal(t, "span completed with error", logs.All()[1].Message)
	assert.Equal(t, 500, failed.StatusCode)

	// After Close spans are dropped silently
	tracer.Submit(span)
	tracer.Close()
	assert.Equal(t, 2, logs.Len())
}

func TestTraceContextHeaders(t *testing.T) {
	traceID, spanID := ExtractTraceContext(map[string]string{
		TraceHeader: "trace_abc",
		SpanHeader:  "bad id\n",
	})
	assert.Equal(t, TraceID("trace_abc"), traceID)
	assert.Empty(t, spanID)

	traceID, _ = ExtractTraceContext(map[string]string{TraceHeader: strings.Repeat("x", 200)})
	assert.Empty(t, traceID)

	ctx := context.WithValue(context.Background(), traceIDKey, TraceID("t1"))
	ctx = context.WithValue(ctx, spanIDKey, SpanID("s1"))
	assert.Equal(t, TraceID("t1"), GetTraceID(ctx))
	assert.Equal(t, SpanID("s1"), GetSpanID(ctx))

	assert.Len(t, Fields(ctx), 2)
	assert.Empty(t, Fields(context.Background()))
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObservedTracer()

	var seen TraceID
	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/ping", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(TraceHeader, "trace_client")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, TraceID("trace_client"), seen)
	assert.Equal(t, "trace_client", w.Header().Get(TraceHeader))
	assert.NotEmpty(t, w.Header().Get(SpanHeader))

	tracer.Close()
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET /ping", fields["operation"])
	assert.Equal(t, "200", fields["http.status"])
}
