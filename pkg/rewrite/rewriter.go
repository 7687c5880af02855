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
	"io"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Rewriter converts a stream of text
type Rewriter interface {
	Rewrite(ctx context.Context, content io.Reader) (*Result, error)
}

// 📦 Result holds the outcome of a Rewrite
type Result struct {
	Original    string
	Modified    string
	Rewrites    int
	WasModified bool
}

// DelimiterRewriter implements Rewriter with Convert
type DelimiterRewriter struct{}

// NewDelimiterRewriter creates a new DelimiterRewriter
func NewDelimiterRewriter() *DelimiterRewriter {
	return &DelimiterRewriter{}
}

// Rewrite implements Rewriter.Rewrite
func (r *DelimiterRewriter) Rewrite(ctx context.Context, content io.Reader) (*Result, error) {
	original, err := io.ReadAll(content)
	if err != nil {
		return nil, errors.Errorf("reading content: %w", err)
	}

	modified, count, err := convert(ctx, string(original))
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Debug().
		Int("rewrites", count).
		Int("bytes_in", len(original)).
		Int("bytes_out", len(modified)).
		Msg("rewrote delimiters")

	return &Result{
		Original:    string(original),
		Modified:    modified,
		Rewrites:    count,
		WasModified: count > 0,
	}, nil
}
