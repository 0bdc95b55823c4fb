package multipart

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracedReader starts a span at the first read of a rendered body and
// ends it at the read returning a terminal error, io.EOF included.
type tracedReader struct {
	traceCtx context.Context
	name     string
	span     trace.Span
	tracer   trace.Tracer

	reads     int
	bytesRead int64
	ended     bool
	body      io.ReadCloser
}

func newTracedReader(ctx context.Context, tracer trace.Tracer, body io.ReadCloser, name string) *tracedReader {
	return &tracedReader{
		traceCtx: ctx,
		name:     name,
		tracer:   tracer,
		body:     body,
	}
}

func (r *tracedReader) Read(p []byte) (int, error) {
	if r.span == nil && !r.ended {
		_, r.span = r.tracer.Start(r.traceCtx, r.name)
	}

	n, err := r.body.Read(p)
	if !r.ended {
		r.reads++
		r.bytesRead += int64(n)

		if err != nil {
			r.span.SetAttributes(
				attribute.Int("reads", r.reads),
				attribute.Int64("bytes_read", r.bytesRead),
			)
			r.ended = true
			if errors.Is(err, io.EOF) {
				r.span.SetStatus(codes.Ok, "")
			} else {
				r.span.SetStatus(codes.Error, err.Error())
			}
			r.span.End()
		}
	}

	return n, err
}

func (r *tracedReader) Close() error {
	return r.body.Close()
}
