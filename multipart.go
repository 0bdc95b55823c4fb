// Copyright 2025 Nonvolatile Inc. d/b/a Confident Security

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     https://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package multipart assembles multipart/form-data request bodies (RFC
// 2046 framing) from named text and file fields. A form can be rendered
// three equivalent ways: as one in-memory buffer, as a pull reader, or as
// a push chunk stream, all byte-identical. File payloads can be
// transformed on the fly with a content-transfer-encoding, and the exact
// body length is computed up front whenever the encoding allows it, so a
// Content-Length header can be set without buffering the body.
package multipart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/openpcc/multipart/encoding"
)

// Multipart is a multipart/form-data form under construction: a boundary
// token plus an ordered list of parts. Insertion order is wire order.
//
// A Multipart is consumed by its first render (Bytes, Reader, Stream or
// Apply); rendering it again fails with ErrorCodeConsumed.
type Multipart struct {
	boundary string
	parts    []*Part
	tracer   trace.Tracer
	consumed bool
}

// New creates an empty form with a randomly generated boundary.
func New(opts ...Option) (*Multipart, error) {
	m := &Multipart{
		boundary: randomBoundary(),
		tracer:   noop.Tracer{},
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Boundary returns the boundary token.
func (m *Multipart) Boundary() string {
	return m.boundary
}

// ContentType returns the value for the Content-Type header of the
// carrying request.
func (m *Multipart) ContentType() string {
	return "multipart/form-data; boundary=" + m.boundary
}

// AddText appends a plain text field.
func (m *Multipart) AddText(name, value string) {
	m.parts = append(m.parts, NewTextPart(name, value))
}

// AddJSON marshals v and appends it as an application/json field.
func (m *Multipart) AddJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return Error{
			Code: ErrorCodeInvalidJSON,
			Err:  fmt.Errorf("field %q: %w", name, err),
		}
	}
	m.parts = append(m.parts, &Part{
		name:        name,
		contentType: "application/json",
		src:         bytes.NewReader(data),
		size:        int64(len(data)),
	})
	return nil
}

// AddFile appends a file field with an in-memory payload.
func (m *Multipart) AddFile(name, filename, contentType string, enc encoding.Encoding, data []byte) error {
	p, err := NewFilePart(name, filename, contentType, enc, data)
	if err != nil {
		return err
	}
	m.parts = append(m.parts, p)
	return nil
}

// AddReader appends a file field reading its payload from src. Pass a
// negative size when the payload length is unknown; the form then has no
// size hint and the carrying request must not claim a Content-Length.
func (m *Multipart) AddReader(name, filename, contentType string, enc encoding.Encoding, src io.Reader, size int64) error {
	p, err := NewReaderPart(name, filename, contentType, enc, src, size)
	if err != nil {
		return err
	}
	m.parts = append(m.parts, p)
	return nil
}

// AddFilePath appends a file field loaded from path. The filename and
// content type are derived from the path.
func (m *Multipart) AddFilePath(name, path string, enc encoding.Encoding) error {
	p, err := NewFilePartFromPath(name, path, enc)
	if err != nil {
		return err
	}
	m.parts = append(m.parts, p)
	return nil
}

// AddPart appends a prebuilt part.
func (m *Multipart) AddPart(p *Part) {
	m.parts = append(m.parts, p)
}

// SizeHint returns the exact byte length of the rendered body, for use as
// a Content-Length. It reports false as soon as any part's length is
// unknown up front; the caller must then omit Content-Length rather than
// guess.
func (m *Multipart) SizeHint() (int64, bool) {
	if len(m.parts) == 0 {
		return 0, true
	}
	// Closing delimiter: "--" boundary "--" CRLF.
	total := int64(len(m.boundary) + 6)
	for _, p := range m.parts {
		ps, ok := p.SizeHint()
		if !ok {
			return 0, false
		}
		// "--" boundary CRLF, the part, then the part's closing CRLF.
		total += int64(len(m.boundary)+4) + ps + 2
	}
	return total, true
}

// segments renders the whole form into wire-order segments, consuming the
// Multipart and every part. An empty form renders to nothing, with no
// boundary wrapper.
func (m *Multipart) segments(chunkSize int) ([]segment, error) {
	if m.consumed {
		return nil, Error{
			Code: ErrorCodeConsumed,
			Err:  errors.New("multipart form already rendered"),
		}
	}
	m.consumed = true
	if len(m.parts) == 0 {
		return nil, nil
	}
	delimiter := []byte("--" + m.boundary + crlf)
	segs := make([]segment, 0, len(m.parts)*4+1)
	for _, p := range m.parts {
		partSegs, err := p.segments(chunkSize)
		if err != nil {
			return nil, err
		}
		segs = append(segs, segment{static: delimiter})
		segs = append(segs, partSegs...)
		segs = append(segs, segment{static: []byte(crlf)})
	}
	return append(segs, segment{static: []byte("--" + m.boundary + "--" + crlf)}), nil
}

// Stream renders the form as a push chunk sequence: one chunk for each
// delimiter and header block, and one chunk per read-encode cycle of each
// payload. chunkSize is the raw bytes read per cycle; non-positive
// selects the default. Consumes the Multipart.
func (m *Multipart) Stream(chunkSize int) (*Stream, error) {
	segs, err := m.segments(chunkSize)
	if err != nil {
		return nil, err
	}
	return newStream(segs), nil
}

// Reader renders the form as a pull reader producing exactly the same
// bytes as Stream for the same chunk size. A span from the configured
// tracer covers the first read through the end of the body. Closing the
// reader closes every part source. Consumes the Multipart.
func (m *Multipart) Reader(ctx context.Context, chunkSize int) (io.ReadCloser, error) {
	segs, err := m.segments(chunkSize)
	if err != nil {
		return nil, err
	}
	body := &bodyReader{stream: newStream(segs)}
	return newTracedReader(ctx, m.tracer, body, "multipart.Render"), nil
}

// Bytes fully materializes the body. Consumes the Multipart.
func (m *Multipart) Bytes() (body []byte, err error) {
	size, sized := m.SizeHint()
	s, err := m.Stream(0)
	if err != nil {
		return nil, err
	}
	defer func() {
		// The render error is more important than a close error,
		// which is usually a consequence of the original failure.
		closeErr := s.Close()
		if closeErr != nil && err == nil {
			err = Error{Code: ErrorCodeIO, Err: closeErr}
		}
	}()

	var buf bytes.Buffer
	if sized {
		buf.Grow(int(size))
	}
	for {
		chunk, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		buf.Write(chunk)
	}
	return buf.Bytes(), nil
}
