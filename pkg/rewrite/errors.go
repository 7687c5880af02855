// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rewrite

import (
	"fmt"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrBraceMismatch is matched by every error caused by an argument group
	// that never closes.
	ErrBraceMismatch = errors.Base("brace mismatch")

	// ErrNotImplemented is returned by Invert.
	ErrNotImplemented = errors.Base("operation not implemented")
)

// 🧱 BraceMismatchError reports an argument group left open at end of input
type BraceMismatchError struct {
	Size   string // size token of the occurrence, e.g. \Big
	Offset int    // byte offset of the opening brace
	Line   int    // 1-based line of the opening brace
	Column int    // 1-based column of the opening brace
	Depth  int    // groups still open when the input ran out
}

func (e *BraceMismatchError) Error() string {
	return fmt.Sprintf("brace mismatch: argument of %s opened at line %d, column %d is never closed (%d group(s) left open)",
		e.Size, e.Line, e.Column, e.Depth)
}

func (e *BraceMismatchError) Unwrap() error {
	return ErrBraceMismatch
}

// LineColumn converts a byte offset into a 1-based line and column. The
// column counts runes, not bytes.
func LineColumn(text string, offset int) (int, int) {
	if offset < 0 || offset > len(text) {
		return 1, 1
	}

	line := 1
	lastNewline := -1
	for i := 0; i < offset; i++ {
		if text[i] == '\n' {
			line++
			lastNewline = i
		}
	}

	return line, utf8.RuneCountInString(text[lastNewline+1:offset]) + 1
}
