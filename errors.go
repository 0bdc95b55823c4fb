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
	"strconv"
)

// ErrorCode classifies an error raised while building or rendering a
// form.
type ErrorCode int

// Error codes returned by this package.
const (
	ErrorCodeIO       ErrorCode = 1
	ErrorCodeConsumed ErrorCode = 2

	ErrorCodeInvalidContentType ErrorCode = 100
	ErrorCodeInvalidBoundary    ErrorCode = 101
	ErrorCodeInvalidJSON        ErrorCode = 102
)

// Error is an error from this package carrying a stable code. Callers can
// check for it with errors.As and derive more detailed information.
type Error struct {
	Code ErrorCode
	Err  error
}

// IsGeneralError indicates whether the error is an I/O or lifecycle
// error rather than a problem with caller input.
func (e Error) IsGeneralError() bool {
	return e.Code >= 0 && e.Code < 100
}

// IsInputError indicates whether the error was caused by invalid caller
// input. Input errors are surfaced at the add or construction call, never
// during a render.
func (e Error) IsInputError() bool {
	return e.Code >= 100 && e.Code < 200
}

func (e Error) Error() string {
	return strconv.Itoa(int(e.Code)) + ": " + e.Err.Error()
}

func (e Error) Unwrap() error {
	return e.Err
}
