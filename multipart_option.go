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

	"go.opentelemetry.io/otel/trace"
)

// Option configures a Multipart.
type Option func(m *Multipart) error

// WithBoundary fixes the boundary token instead of generating a random
// one. The token must satisfy RFC 2046 section 5.1.1. Mainly useful for
// deterministic output in tests.
func WithBoundary(boundary string) Option {
	return func(m *Multipart) error {
		if err := validateBoundary(boundary); err != nil {
			return err
		}
		m.boundary = boundary
		return nil
	}
}

// WithTracer traces renders of the form with the given tracer. The
// default is a noop tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Multipart) error {
		if tracer == nil {
			return errors.New("nil tracer")
		}
		m.tracer = tracer
		return nil
	}
}
