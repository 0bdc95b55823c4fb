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
	"context"
	"io"
	"net/http"
)

// bufferedBodyMax is the largest fully sized body that Apply materializes
// in memory. Buffered bodies make the request replayable on redirects and
// retries; anything larger, or of unknown size, streams.
const bufferedBodyMax = 1 << 20

// Apply attaches the form to req as its body. It sets the Content-Type
// header, strips any stale Content-Length header, and sets
// req.ContentLength from the size hint when the body length is known,
// leaving it unknown otherwise so the transport falls back to chunked
// transfer. Consumes the Multipart.
func (m *Multipart) Apply(req *http.Request) error {
	req.Header.Set("Content-Type", m.ContentType())
	// For outgoing requests the transport takes the length from
	// req.ContentLength; a stale header value would lie about the
	// encoded body.
	req.Header.Del("Content-Length")

	size, sized := m.SizeHint()
	if sized && size <= bufferedBodyMax {
		body, err := m.Bytes()
		if err != nil {
			return err
		}
		if len(body) == 0 {
			// An empty form renders to nothing at all.
			req.ContentLength = 0
			req.Body = http.NoBody
			req.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
			return nil
		}
		req.ContentLength = int64(len(body))
		req.Body = io.NopCloser(bytes.NewReader(body))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		return nil
	}

	body, err := m.Reader(req.Context(), 0)
	if err != nil {
		return err
	}
	if sized {
		req.ContentLength = size
	} else {
		// A zero ContentLength with a non-nil body means unknown
		// for client requests.
		req.ContentLength = 0
	}
	req.Body = body
	req.GetBody = nil
	return nil
}

// NewRequest builds an HTTP request with the form attached as its body.
func NewRequest(ctx context.Context, method, url string, m *Multipart) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	if err := m.Apply(req); err != nil {
		return nil, err
	}
	return req, nil
}
