/*
Package tracing provides lightweight request tracing for the linksan server.

# Overview

Each HTTP request gets a span. Trace context arrives in headers, is carried
in the request context, and is echoed back so that clients can correlate a
sanitize call with server logs.

# Features

- Trace context propagation via HTTP headers
- Span creation with parent-child relationships
- ULID trace and span identifiers
- Gin middleware for automatic instrumentation
- Spans are written through zap from a buffered collector

# Usage

	tracer := tracing.New("linksan", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "rules.reload")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

# Trace Format

- X-Trace-ID: Unique identifier for entire request flow
- X-Span-ID: Identifier for current operation

Client supplied IDs longer than 128 bytes or containing non-printable bytes
are ignored and a fresh trace is started.
*/
package tracing
