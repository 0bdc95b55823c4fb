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

// Package encoding implements the content-transfer-encodings applied to
// multipart payloads and the chunked transform that streams them.
package encoding

import (
	"bytes"
	"encoding/base64"
	"mime/quotedprintable"
)

// Encoding is a content-transfer-encoding for a part payload. The zero
// value None means the payload is sent as-is with no
// Content-Transfer-Encoding header.
type Encoding int

const (
	None Encoding = iota
	SevenBit
	EightBit
	Base64
	QuotedPrintable
)

// WireName returns the token used in a Content-Transfer-Encoding header.
// None has no wire name and returns the empty string.
func (e Encoding) WireName() string {
	switch e {
	case SevenBit:
		return "7bit"
	case EightBit:
		return "8bit"
	case Base64:
		return "base64"
	case QuotedPrintable:
		return "quoted-printable"
	default:
		return ""
	}
}

func (e Encoding) String() string {
	if e == None {
		return "none"
	}
	return e.WireName()
}

// Encode returns the wire form of p. The identity encodings (None,
// SevenBit, EightBit) return p itself; Base64 returns unpadded standard
// base64; QuotedPrintable returns RFC 2045 quoted-printable.
func (e Encoding) Encode(p []byte) []byte {
	switch e {
	case Base64:
		out := make([]byte, base64.RawStdEncoding.EncodedLen(len(p)))
		base64.RawStdEncoding.Encode(out, p)
		return out
	case QuotedPrintable:
		var buf bytes.Buffer
		w := quotedprintable.NewWriter(&buf)
		// Writes to a bytes.Buffer cannot fail.
		_, _ = w.Write(p)
		_ = w.Close()
		return buf.Bytes()
	default:
		return p
	}
}

// EncodedLen reports the encoded size of n payload bytes. ok is false for
// QuotedPrintable, whose expansion depends on the payload itself; callers
// must then treat the part size as unknown.
func (e Encoding) EncodedLen(n int64) (size int64, ok bool) {
	switch e {
	case Base64:
		// Unpadded: 4 symbols per full 3-byte group, then 2 or 3
		// symbols for a 1- or 2-byte remainder.
		size = n / 3 * 4
		if r := n % 3; r > 0 {
			size += r + 1
		}
		return size, true
	case QuotedPrintable:
		return 0, false
	default:
		return n, true
	}
}

// chunkAlign rounds a raw buffer size so that independently encoded
// buffers concatenate to the encoding of the whole payload. Base64 groups
// 3 raw bytes into 4 symbols, so every buffer except the last must end on
// a 3-byte boundary. The other encodings tolerate arbitrary boundaries.
func (e Encoding) chunkAlign(size int) int {
	if e != Base64 {
		return size
	}
	if r := size % 3; r != 0 {
		size += 3 - r
	}
	return size
}
