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

package encoding

import (
	"errors"
	"io"
)

// DefaultChunkSize is the raw read size used when the caller does not
// supply one.
const DefaultChunkSize = 2048

// ChunkReader reads fixed-size buffers from a source and emits their
// encoded form, so that the concatenation of all emitted chunks equals
// the encoding of the whole payload without the payload ever being
// buffered in full.
//
// It can be driven in push mode with Next, one encoded chunk per call, or
// in pull mode as an io.Reader. Both modes produce the same byte
// sequence. The two modes must not be mixed on one ChunkReader.
type ChunkReader struct {
	src io.Reader
	enc Encoding
	raw []byte
	out []byte // encoded bytes not yet delivered through Read
	err error
}

// NewChunkReader wraps src. chunkSize is the raw bytes read per cycle; a
// non-positive value selects DefaultChunkSize. For Base64 the size is
// rounded up to a multiple of 3 so chunk boundaries never split an
// encoding group.
func NewChunkReader(src io.Reader, enc Encoding, chunkSize int) *ChunkReader {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkReader{
		src: src,
		enc: enc,
		raw: make([]byte, enc.chunkAlign(chunkSize)),
	}
}

// Next returns the next encoded chunk. Every chunk except the last covers
// one full raw buffer, so Base64 group boundaries line up with chunk
// boundaries. The returned slice is only valid until the next call. A
// clean end of the payload is reported as io.EOF; any other error comes
// from the source and is sticky.
func (r *ChunkReader) Next() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	n, err := io.ReadFull(r.src, r.raw)
	switch {
	case err == nil:
		return r.enc.Encode(r.raw[:n]), nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		// Final, partial buffer.
		r.err = io.EOF
		return r.enc.Encode(r.raw[:n]), nil
	case errors.Is(err, io.EOF):
		r.err = io.EOF
		return nil, io.EOF
	default:
		r.err = err
		return nil, err
	}
}

// Read implements io.Reader over the same chunk sequence: it drains the
// pending encoded chunk and performs one read-encode cycle when nothing
// is buffered.
func (r *ChunkReader) Read(p []byte) (int, error) {
	if len(r.out) == 0 {
		chunk, err := r.Next()
		if err != nil {
			return 0, err
		}
		r.out = chunk
	}
	n := copy(p, r.out)
	r.out = r.out[n:]
	return n, nil
}

// Close closes the underlying source when it is closable.
func (r *ChunkReader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
