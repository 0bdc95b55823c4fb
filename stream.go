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
	"errors"
	"io"

	"github.com/openpcc/multipart/encoding"
)

// segment is one wire-order piece of a rendered body: either fixed bytes
// (boundary delimiters, header blocks, CRLFs) or a payload streamed
// through a chunked encoding transform. Exactly one field is set.
type segment struct {
	static  []byte
	payload *encoding.ChunkReader
}

// Stream yields a rendered body as a lazy sequence of byte chunks.
// Payload bytes are read and encoded one chunk at a time, so the full
// body is never held in memory.
type Stream struct {
	segments []segment
	closers  []*encoding.ChunkReader
	err      error
}

func newStream(segments []segment) *Stream {
	s := &Stream{segments: segments}
	for _, seg := range segments {
		if seg.payload != nil {
			s.closers = append(s.closers, seg.payload)
		}
	}
	return s
}

// Next returns the next chunk of the body. A clean end of the sequence is
// reported as io.EOF; any other error comes from a payload source and is
// sticky. Payload chunks are only valid until the next call.
func (s *Stream) Next() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	for len(s.segments) > 0 {
		seg := s.segments[0]
		if seg.payload == nil {
			s.segments = s.segments[1:]
			return seg.static, nil
		}
		chunk, err := seg.payload.Next()
		switch {
		case err == nil:
			return chunk, nil
		case errors.Is(err, io.EOF):
			s.segments = s.segments[1:]
		default:
			s.err = err
			return nil, err
		}
	}
	s.err = io.EOF
	return nil, io.EOF
}

// Close closes every payload source, joining any close errors. It is a
// no-op after the first call.
func (s *Stream) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.segments = nil
	s.closers = nil
	return errors.Join(errs...)
}

// bodyReader adapts a Stream to io.ReadCloser. The byte sequence is
// identical to draining the Stream chunk by chunk.
type bodyReader struct {
	stream  *Stream
	pending []byte
	err     error
}

func (r *bodyReader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		chunk, err := r.stream.Next()
		if err != nil {
			r.err = err
			return 0, err
		}
		r.pending = chunk
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

func (r *bodyReader) Close() error {
	return r.stream.Close()
}
