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

package plan

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Options carries inputs a parser needs besides the plan bytes.
type Options struct {
	// Filename is used in diagnostics.
	Filename string
	// Variables are exposed to HCL plans as var.<name>.
	Variables map[string]string
}

// 🔌 Parser is the interface for plan parsers
type Parser interface {
	// 📝 Parse decodes a plan from bytes. It does not validate.
	Parse(ctx context.Context, data []byte, opts Options) (*Plan, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🎯 Load reads, parses and validates the plan at path.
func Load(ctx context.Context, path string, opts Options) (*Plan, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading plan")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading plan file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w: no parser for %s", ErrInvalid, filepath.Base(path))
	}

	if opts.Filename == "" {
		opts.Filename = filepath.Base(path)
	}

	pl, err := p.Parse(ctx, data, opts)
	if err != nil {
		return nil, errors.Errorf("%w: parsing %s: %s", ErrInvalid, opts.Filename, err.Error())
	}

	if err := pl.Validate(); err != nil {
		return nil, errors.Errorf("validating plan: %w", err)
	}

	logger.Debug().
		Str("hash", pl.Hash()).
		Int("documents", len(pl.Documents)).
		Int("operations", pl.Operations()).
		Msg("loaded plan")

	return pl, nil
}
