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
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpcc/multipart/encoding"
)

func mustPart(t *testing.T) func(p *Part, err error) *Part {
	t.Helper()
	return func(p *Part, err error) *Part {
		require.NoError(t, err)
		return p
	}
}

func TestHeaderLenMatchesRenderedHeader(t *testing.T) {
	parts := []*Part{
		NewTextPart("field", "value"),
		NewTextPart(`na"me`, "value"),
		NewTextPart("enc", "value").SetEncoding(encoding.QuotedPrintable),
		mustPart(t)(NewFilePart("file", `fi"le.bin`, "application/octet-stream", encoding.Base64, nil)),
		mustPart(t)(NewFilePart("plain", "plain.txt", "text/plain", encoding.None, nil)),
	}
	for _, p := range parts {
		assert.Equal(t, len(p.appendHeader(nil)), p.headerLen(), p.name)
	}
}

func TestTextPartHeaderHasNoFilename(t *testing.T) {
	hdr := string(NewTextPart("field", "v").appendHeader(nil))
	assert.NotContains(t, hdr, "filename=")
	assert.Contains(t, hdr, `name="field"`)
}

func TestFilePartHeaderOrder(t *testing.T) {
	p := mustPart(t)(NewFilePart("file", "a.bin", "application/octet-stream", encoding.Base64, nil))
	assert.Equal(t,
		"Content-Disposition: form-data; name=\"file\"; filename=\"a.bin\"\r\n"+
			"Content-Type: application/octet-stream\r\n"+
			"Content-Transfer-Encoding: base64\r\n"+
			"\r\n",
		string(p.appendHeader(nil)))
}

func TestPartChunksHeaderFirst(t *testing.T) {
	p := mustPart(t)(NewFilePart("file", "a.bin", "application/octet-stream", encoding.Base64, []byte("abc")))
	wantHeader := string(p.appendHeader(nil))

	s, err := p.Chunks(0)
	require.NoError(t, err)

	first, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, wantHeader, string(first))

	second, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, "YWJj", string(second))

	_, err = s.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestPartConsumedOnce(t *testing.T) {
	p := NewTextPart("field", "value")
	_, err := p.Reader(0)
	require.NoError(t, err)

	_, err = p.Chunks(0)
	var mpErr Error
	require.ErrorAs(t, err, &mpErr)
	assert.Equal(t, ErrorCodeConsumed, mpErr.Code)
}

func TestPartReaderAndChunksIdentical(t *testing.T) {
	data := make([]byte, 257)
	for i := range data {
		data[i] = byte(i)
	}

	chunked := mustPart(t)(NewFilePart("f", "f.bin", "application/octet-stream", encoding.Base64, data))
	s, err := chunked.Chunks(16)
	require.NoError(t, err)
	var fromChunks []byte
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		fromChunks = append(fromChunks, chunk...)
	}

	pulled := mustPart(t)(NewFilePart("f", "f.bin", "application/octet-stream", encoding.Base64, data))
	r, err := pulled.Reader(16)
	require.NoError(t, err)
	fromReader, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.Equal(t, fromChunks, fromReader)
}
