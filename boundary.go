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
	"crypto/rand"
	"fmt"
	"strings"
)

const boundaryLen = 30

const boundaryAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// randomBoundary returns a 30 character alphanumeric token. Uniqueness is
// probabilistic, not guaranteed: RFC 2046 relies on the token not
// appearing in any part payload, and like most encoders this package does
// not scan payloads for collisions.
func randomBoundary() string {
	var buf [boundaryLen]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read is documented to never fail.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = boundaryAlphabet[int(b)%len(boundaryAlphabet)]
	}
	return string(buf[:])
}

// validateBoundary enforces RFC 2046 section 5.1.1.
func validateBoundary(boundary string) error {
	if len(boundary) < 1 || len(boundary) > 69 {
		return Error{
			Code: ErrorCodeInvalidBoundary,
			Err:  fmt.Errorf("boundary length %d outside [1, 69]", len(boundary)),
		}
	}
	for _, b := range boundary {
		if 'A' <= b && b <= 'Z' || 'a' <= b && b <= 'z' || '0' <= b && b <= '9' {
			continue
		}
		switch b {
		case '\'', '(', ')', '+', '_', ',', '-', '.', '/', ':', '=', '?':
			continue
		}
		return Error{
			Code: ErrorCodeInvalidBoundary,
			Err:  fmt.Errorf("invalid boundary character %q", b),
		}
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
