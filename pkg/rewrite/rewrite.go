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
	"context"
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// 🎯 opener matches `\bra[\SIZE]`. Go's \w is ASCII only, so size tokens are
// restricted to [0-9A-Za-z_] after the backslash.
var opener = regexp.MustCompile(`\\bra\[(\\\w+)\]`)

// 📍 Match is one `\bra[SIZE]{ARG}` occurrence
type Match struct {
	Start    int    // offset of `\bra`
	End      int    // offset just past the closing brace
	Size     string // size token, e.g. \Big
	ArgStart int    // first byte of the argument
	ArgEnd   int    // offset of the closing brace
}

// Arg returns the argument of m inside text.
func (m Match) Arg(text string) string {
	return text[m.ArgStart:m.ArgEnd]
}

// apply replaces m inside text with `SIZE(ARG SIZE)`.
func (m Match) apply(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(m.Size) + 2)
	b.WriteString(text[:m.Start])
	b.WriteString(m.Size)
	b.WriteByte('(')
	b.WriteString(text[m.ArgStart:m.ArgEnd])
	b.WriteString(m.Size)
	b.WriteByte(')')
	b.WriteString(text[m.End:])
	return b.String()
}

// Find returns the leftmost occurrence starting at or after from.
//
// An opener not followed by `{` (whitespace aside) is not an occurrence and
// is skipped. An opener whose group never closes is a *BraceMismatchError.
func Find(text string, from int) (Match, bool, error) {
	for from >= 0 && from <= len(text) {
		loc := opener.FindStringSubmatchIndex(text[from:])
		if loc == nil {
			return Match{}, false, nil
		}

		start, end := from+loc[0], from+loc[1]
		size := text[from+loc[2] : from+loc[3]]

		open := skipSpace(text, end)
		if open >= len(text) || text[open] != '{' {
			from = end
			continue
		}

		closing, depth := closingBrace(text, open)
		if closing < 0 {
			line, col := LineColumn(text, open)
			return Match{}, false, &BraceMismatchError{
				Size:   size,
				Offset: open,
				Line:   line,
				Column: col,
				Depth:  depth,
			}
		}

		return Match{
			Start:    start,
			End:      closing + 1,
			Size:     size,
			ArgStart: open + 1,
			ArgEnd:   closing,
		}, true, nil
	}
	return Match{}, false, nil
}

// FindAll lists every occurrence in text by start offset, including ones
// nested inside another occurrence's argument. Nothing is rewritten.
func FindAll(text string) ([]Match, error) {
	var matches []Match
	from := 0
	for {
		m, ok, err := Find(text, from)
		if err != nil {
			return nil, err
		}
		if !ok {
			return matches, nil
		}
		matches = append(matches, m)
		from = m.ArgStart
	}
}

// Convert rewrites every `\bra[SIZE]{ARG}` in text into `SIZE(ARG SIZE)`.
//
// After each rewrite the whole string is scanned again from the start, so
// occurrences nested inside an argument are rewritten too.
func Convert(text string) (string, error) {
	out, _, err := convert(context.Background(), text)
	return out, err
}

// Invert would turn `SIZE(ARG SIZE)` back into `\bra[SIZE]{ARG}`. The round
// trip is ambiguous without a marker in the converted text, so it always
// fails with ErrNotImplemented.
func Invert(text string) (string, error) {
	return "", errors.WithStack(ErrNotImplemented)
}

func convert(ctx context.Context, text string) (string, int, error) {
	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return "", count, errors.Errorf("converting: %w", err)
		}

		m, ok, err := Find(text, 0)
		if err != nil {
			return "", count, err
		}
		if !ok {
			return text, count, nil
		}

		text = m.apply(text)
		count++
	}
}

// closingBrace walks from the `{` at open and returns the offset of its
// matching `}`. Every brace counts. When the input runs out it returns -1
// and the depth still open.
func closingBrace(text string, open int) (int, int) {
	depth := 1
	for i := open + 1; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, 0
			}
		}
	}
	return -1, depth
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case ' ', '\t', '\r', '\n':
			i++
		default:
			return i
		}
	}
	return i
}
