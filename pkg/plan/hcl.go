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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files.
//
//	document "src/app/layout.tsx" {
//	  operation "import-hook" { ... }
//	}
//
//	documents "src/app/**/page.tsx" {
//	  ignore = ["src/app/legacy/**"]
//	  operation "use-client" { ... }
//	}
//
// Payloads are HCL strings, so a literal "${" must be written "$${".
type HCLParser struct{}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

type hclPlan struct {
	Documents []hclDocument `hcl:"document,block"`
	Globs     []hclGlob     `hcl:"documents,block"`
}

type hclDocument struct {
	Path       string      `hcl:"path,label"`
	Operations []Operation `hcl:"operation,block"`
}

type hclGlob struct {
	Glob       string      `hcl:"glob,label"`
	Ignore     []string    `hcl:"ignore,optional"`
	Operations []Operation `hcl:"operation,block"`
}

// 📝 Parse decodes an HCL plan. Single-path documents come before glob
// documents in the result.
func (p *HCLParser) Parse(ctx context.Context, data []byte, opts Options) (*Plan, error) {
	filename := opts.Filename
	if filename == "" {
		filename = "plan.hcl"
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	var raw hclPlan
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(opts.Variables), &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	pl := &Plan{}
	for _, d := range raw.Documents {
		pl.Documents = append(pl.Documents, Document{Path: d.Path, Operations: d.Operations})
	}
	for _, g := range raw.Globs {
		pl.Documents = append(pl.Documents, Document{Glob: g.Glob, Ignore: g.Ignore, Operations: g.Operations})
	}
	return pl, nil
}

// evalContext exposes vars as var.<name>.
func evalContext(vars map[string]string) *hcl.EvalContext {
	values := make(map[string]cty.Value, len(vars))
	for k, v := range vars {
		values[k] = cty.StringVal(v)
	}

	obj := cty.EmptyObjectVal
	if len(values) > 0 {
		obj = cty.ObjectVal(values)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var": obj,
		},
	}
}
