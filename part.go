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

package multipart

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/openpcc/multipart/encoding"
)

// unknownSize marks a payload whose length cannot be known up front.
const unknownSize int64 = -1

const crlf = "\r\n"

// Part is one named field of a multipart form: a text value or a
// file-like payload. A part owns its payload source and is consumed by
// the first render; a consumed part cannot be rendered again.
//
// Text parts have no filename; file parts always carry one. That presence
// is what switches the Content-Disposition header between the two forms.
type Part struct {
	name        string
	filename    string
	contentType string
	enc         encoding.Encoding
	src         io.Reader
	size        int64
	consumed    bool
}

// NewTextPart returns a text field with content type text/plain and no
// content-transfer-encoding.
func NewTextPart(name, value string) *Part {
	return &Part{
		name:        name,
		contentType: "text/plain",
		src:         strings.NewReader(value),
		size:        int64(len(value)),
	}
}

// NewFilePart returns a file field with an in-memory payload.
func NewFilePart(name, filename, contentType string, enc encoding.Encoding, data []byte) (*Part, error) {
	return newFilePart(name, filename, contentType, enc, bytes.NewReader(data), int64(len(data)))
}

// NewReaderPart returns a file field reading its payload from src. The
// part takes exclusive ownership of src and closes it, if closable, when
// the render is closed. size is the raw payload length; pass a negative
// value when it is unknown, in which case the part reports no size hint.
func NewReaderPart(name, filename, contentType string, enc encoding.Encoding, src io.Reader, size int64) (*Part, error) {
	if size < 0 {
		size = unknownSize
	}
	return newFilePart(name, filename, contentType, enc, src, size)
}

func newFilePart(name, filename, contentType string, enc encoding.Encoding, src io.Reader, size int64) (*Part, error) {
	if _, _, err := mime.ParseMediaType(contentType); err != nil {
		return nil, Error{
			Code: ErrorCodeInvalidContentType,
			Err:  fmt.Errorf("content type %q: %w", contentType, err),
		}
	}
	return &Part{
		name:        name,
		filename:    filename,
		contentType: contentType,
		enc:         enc,
		src:         src,
		size:        size,
	}, nil
}

// NewFilePartFromPath opens path and returns a file field over it. The
// filename is the path's base name and the content type is guessed from
// the extension, falling back to application/octet-stream. The open file
// is closed when the render it feeds is closed.
func NewFilePartFromPath(name, path string, enc encoding.Encoding) (*Part, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Error{Code: ErrorCodeIO, Err: err}
	}
	size := unknownSize
	if fi, err := f.Stat(); err == nil && fi.Mode().IsRegular() {
		size = fi.Size()
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Part{
		name:        name,
		filename:    filepath.Base(path),
		contentType: contentType,
		enc:         enc,
		src:         f,
		size:        size,
	}, nil
}

// SetEncoding sets the content-transfer-encoding of the part. Text parts
// default to none; file parts usually set theirs at construction. It
// returns the part for chaining.
func (p *Part) SetEncoding(enc encoding.Encoding) *Part {
	p.enc = enc
	return p
}

// Name returns the field name.
func (p *Part) Name() string {
	return p.name
}

// SizeHint returns the exact rendered length of the part, header block
// plus encoded payload, when it can be known without reading the payload.
func (p *Part) SizeHint() (int64, bool) {
	if p.size == unknownSize {
		return 0, false
	}
	encoded, ok := p.enc.EncodedLen(p.size)
	if !ok {
		return 0, false
	}
	return int64(p.headerLen()) + encoded, true
}

// headerLen is the exact byte length of the header block, computed
// without building it. Must stay in lockstep with appendHeader.
func (p *Part) headerLen() int {
	n := len(`Content-Disposition: form-data; name=""`) + len(escapeQuotes(p.name)) + len(crlf)
	if p.filename != "" {
		n += len(`; filename=""`) + len(escapeQuotes(p.filename))
	}
	n += len("Content-Type: ") + len(p.contentType) + len(crlf)
	if p.enc != encoding.None {
		n += len("Content-Transfer-Encoding: ") + len(p.enc.WireName()) + len(crlf)
	}
	return n + len(crlf)
}

// appendHeader renders the part's header block: the Content-Disposition
// line, the Content-Type line, the Content-Transfer-Encoding line when an
// encoding is set, and a blank line.
func (p *Part) appendHeader(dst []byte) []byte {
	dst = append(dst, `Content-Disposition: form-data; name="`...)
	dst = append(dst, escapeQuotes(p.name)...)
	dst = append(dst, '"')
	if p.filename != "" {
		dst = append(dst, `; filename="`...)
		dst = append(dst, escapeQuotes(p.filename)...)
		dst = append(dst, '"')
	}
	dst = append(dst, crlf...)
	dst = append(dst, "Content-Type: "...)
	dst = append(dst, p.contentType...)
	dst = append(dst, crlf...)
	if p.enc != encoding.None {
		dst = append(dst, "Content-Transfer-Encoding: "...)
		dst = append(dst, p.enc.WireName()...)
		dst = append(dst, crlf...)
	}
	return append(dst, crlf...)
}

// consume moves the payload source out of the part. It fails once the
// part has already been rendered.
func (p *Part) consume() (io.Reader, error) {
	if p.consumed {
		return nil, Error{
			Code: ErrorCodeConsumed,
			Err:  fmt.Errorf("part %q already rendered", p.name),
		}
	}
	p.consumed = true
	return p.src, nil
}

// segments renders the part into wire-order segments: header block, then
// the payload behind a chunked encoding transform.
func (p *Part) segments(chunkSize int) ([]segment, error) {
	src, err := p.consume()
	if err != nil {
		return nil, err
	}
	return []segment{
		{static: p.appendHeader(nil)},
		{payload: encoding.NewChunkReader(src, p.enc, chunkSize)},
	}, nil
}

// Chunks returns the part's rendered bytes as a chunk sequence: the
// header block as the first chunk, then one chunk per read-encode cycle
// of the payload. It consumes the part.
func (p *Part) Chunks(chunkSize int) (*Stream, error) {
	segs, err := p.segments(chunkSize)
	if err != nil {
		return nil, err
	}
	return newStream(segs), nil
}

// Reader returns the same bytes as Chunks as a pull reader. It consumes
// the part. Closing the reader closes the payload source.
func (p *Part) Reader(chunkSize int) (io.ReadCloser, error) {
	segs, err := p.segments(chunkSize)
	if err != nil {
		return nil, err
	}
	return &bodyReader{stream: newStream(segs)}, nil
}
