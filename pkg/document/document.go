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

package document

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"github.com/walteh/patchrc/pkg/text"
)

// 📄 Document is one text file held in memory for patching.
// It satisfies patch.Buffer.
type Document struct {
	// Path is the path the document was loaded from, as given to Store.Load.
	Path string

	abs      string
	mode     os.FileMode
	original string
	content  string
}

// New builds an in-memory document that was never read from disk.
func New(path, content string) *Document {
	return &Document{Path: path, original: content, content: content, mode: defaultMode}
}

func (d *Document) Content() string { return d.content }

func (d *Document) SetContent(content string) { d.content = content }

// Original is the content as loaded.
func (d *Document) Original() string { return d.original }

// Changed reports whether the content differs from what was loaded.
func (d *Document) Changed() bool { return d.content != d.original }

// Lines is the number of lines in the current content.
func (d *Document) Lines() int { return text.LineCount(d.content) }

// Mode is the permission the file had when loaded.
func (d *Document) Mode() os.FileMode { return d.mode }

// Checksum is the SHA-256 of the current content.
func (d *Document) Checksum() string {
	return checksum(d.content)
}

// 🔍 checksum generates a SHA-256 hash of the content
func checksum(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
