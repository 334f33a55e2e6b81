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
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const defaultMode os.FileMode = 0o644

var (
	// ErrNotFound is returned when a document does not exist or cannot be read.
	ErrNotFound = errors.Base("document not found")
	// ErrWrite is returned when a document cannot be written back.
	ErrWrite = errors.Base("writing document")
)

// 🗄️ Store reads and writes documents relative to a base directory.
type Store struct {
	baseDir string
}

// 🏭 NewStore creates a store rooted at baseDir. An empty baseDir is the
// working directory.
func NewStore(baseDir string) *Store {
	if baseDir == "" {
		baseDir = "."
	}
	return &Store{baseDir: filepath.Clean(baseDir)}
}

// BaseDir is the directory relative paths resolve against.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// 🔒 abs returns the absolute path for a given relative path
func (s *Store) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.baseDir, path)
}

// 📥 Load reads path into a Document.
func (s *Store) Load(ctx context.Context, path string) (*Document, error) {
	abs := s.abs(path)

	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Errorf("%w: %s: %s", ErrNotFound, path, err.Error())
	}
	if info.IsDir() {
		return nil, errors.Errorf("%w: %s is a directory", ErrNotFound, path)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Errorf("%w: %s: %s", ErrNotFound, path, err.Error())
	}

	zerolog.Ctx(ctx).Debug().Str("path", abs).Int("bytes", len(content)).Msg("loaded document")

	return &Document{
		Path:     path,
		abs:      abs,
		mode:     info.Mode().Perm(),
		original: string(content),
		content:  string(content),
	}, nil
}

// 💾 Save writes the document's current content back to its path atomically,
// keeping the mode it had when loaded. After a successful save the current
// content becomes the document's original.
func (s *Store) Save(ctx context.Context, doc *Document) error {
	abs := doc.abs
	if abs == "" {
		abs = s.abs(doc.Path)
	}

	if err := writeFileAtomic(abs, []byte(doc.content), doc.mode); err != nil {
		return errors.Errorf("%w: %s: %s", ErrWrite, doc.Path, err.Error())
	}

	zerolog.Ctx(ctx).Debug().Str("path", abs).Str("checksum", doc.Checksum()).Msg("saved document")

	doc.abs = abs
	doc.original = doc.content
	return nil
}

// Backup writes the document's original content to <path>.bak.
func (s *Store) Backup(ctx context.Context, doc *Document) (string, error) {
	abs := doc.abs
	if abs == "" {
		abs = s.abs(doc.Path)
	}
	backup := abs + ".bak"

	if err := writeFileAtomic(backup, []byte(doc.original), doc.mode); err != nil {
		return "", errors.Errorf("%w: backup of %s: %s", ErrWrite, doc.Path, err.Error())
	}

	zerolog.Ctx(ctx).Debug().Str("path", backup).Msg("backed up document")
	return backup, nil
}

// writeFileAtomic writes to a temp file next to path, then renames it over path.
func writeFileAtomic(path string, data []byte, perm fs.FileMode) error {
	if perm == 0 {
		perm = defaultMode
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(perm); err != nil {
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return errors.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Errorf("renaming temp file: %w", err)
	}

	committed = true
	return nil
}
