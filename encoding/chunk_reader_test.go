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

package encoding_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpcc/multipart/encoding"
)

func testPayload(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i % 251)
	}
	return p
}

func drain(t *testing.T, cr *encoding.ChunkReader) ([][]byte, []byte) {
	t.Helper()

	var chunks [][]byte
	var all []byte
	for {
		chunk, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return chunks, all
		}
		require.NoError(t, err)
		chunks = append(chunks, append([]byte(nil), chunk...))
		all = append(all, chunk...)
	}
}

func TestChunkReaderBase64Alignment(t *testing.T) {
	raw := testPayload(100)

	// A chunk size of 8 is rounded up to 9 so no chunk splits a base64
	// group: every chunk except the last must hold whole 4-symbol groups.
	cr := encoding.NewChunkReader(bytes.NewReader(raw), encoding.Base64, 8)
	chunks, all := drain(t, cr)

	assert.Equal(t, encoding.Base64.Encode(raw), all)
	for i, chunk := range chunks[:len(chunks)-1] {
		assert.Zerof(t, len(chunk)%4, "chunk %d ends mid-group", i)
	}
}

func TestChunkReaderShortReadSource(t *testing.T) {
	// A source delivering one byte per read must not break alignment;
	// each cycle fills the whole raw buffer before encoding.
	raw := testPayload(100)
	cr := encoding.NewChunkReader(iotest.OneByteReader(bytes.NewReader(raw)), encoding.Base64, 9)
	_, all := drain(t, cr)
	assert.Equal(t, encoding.Base64.Encode(raw), all)
}

func TestChunkReaderPushPullIdentical(t *testing.T) {
	raw := testPayload(1000)
	for _, enc := range []encoding.Encoding{encoding.None, encoding.Base64, encoding.QuotedPrintable} {
		for _, chunkSize := range []int{8, 64, 0} {
			push := encoding.NewChunkReader(bytes.NewReader(raw), enc, chunkSize)
			_, pushed := drain(t, push)

			pull := encoding.NewChunkReader(bytes.NewReader(raw), enc, chunkSize)
			pulled, err := io.ReadAll(iotest.OneByteReader(pull))
			require.NoError(t, err)

			assert.Equal(t, pushed, pulled, "%v chunk=%d", enc, chunkSize)
		}
	}
}

func TestChunkReaderEmptySource(t *testing.T) {
	cr := encoding.NewChunkReader(bytes.NewReader(nil), encoding.Base64, 16)
	_, err := cr.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestChunkReaderSourceError(t *testing.T) {
	boom := errors.New("boom")
	cr := encoding.NewChunkReader(iotest.ErrReader(boom), encoding.Base64, 16)

	_, err := cr.Next()
	require.ErrorIs(t, err, boom)

	// The error is sticky.
	_, err = cr.Next()
	require.ErrorIs(t, err, boom)
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestChunkReaderCloseClosesSource(t *testing.T) {
	src := &closeRecorder{Reader: bytes.NewReader([]byte("data"))}
	cr := encoding.NewChunkReader(src, encoding.None, 16)
	require.NoError(t, cr.Close())
	assert.True(t, src.closed)
}
