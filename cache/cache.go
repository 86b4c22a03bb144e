// Copyright (c) 2025 The solflow Authors.
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

// Package cache implements an on-disk, cross-run cache of a function's
// already-computed diagnostics, keyed by package path, function name and a
// hash of the function's own source. A CI run that passes the same cache
// file between invocations skips recomputing the revert/uninitialized
// dataflow entirely for a function whose source has not changed since the
// last run that populated the cache.
//
// The on-disk format is a gob-encoded map, compressed with zstd: gob gives
// the plain Go-native structural encoding, zstd keeps the revert-memo-sized
// map small on disk across the large number of unchanged functions a CI
// cache typically carries.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"go/ast"
	"go/printer"
	"go/token"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/solflow-dev/solflow/diagnostic"
)

func init() {
	gob.Register(diagnostic.Diagnostic{})
}

// Key identifies one function's cached entry.
type Key struct {
	Package  string
	Function string
	Hash     string
}

// Store is a concurrency-safe in-memory cache with on-disk persistence.
type Store struct {
	mu      sync.Mutex
	entries map[Key][]diagnostic.Diagnostic
	dirty   bool
}

// NewStore creates an empty cache.
func NewStore() *Store {
	return &Store{entries: map[Key][]diagnostic.Diagnostic{}}
}

// Load reads a cache file written by Save. A missing file is not an error:
// it yields an empty Store, the same as a first run with no cache yet.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("cache: open zstd reader: %w", err)
	}
	defer zr.Close()

	entries := map[Key][]diagnostic.Diagnostic{}
	if err := gob.NewDecoder(zr).Decode(&entries); err != nil {
		return nil, fmt.Errorf("cache: decode: %w", err)
	}
	return &Store{entries: entries}, nil
}

// Save writes the cache to path if it has changed since it was loaded (or
// created). It writes to a temporary file first and renames it into place,
// so a crash mid-write never corrupts the existing cache.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("cache: open zstd writer: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(s.entries); err != nil {
		zw.Close()
		f.Close()
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Get returns the cached diagnostics for key, if present.
func (s *Store) Get(key Key) ([]diagnostic.Diagnostic, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.entries[key]
	return d, ok
}

// Put records the diagnostics computed for key, marking the store dirty so
// the next Save actually writes it.
func (s *Store) Put(key Key, diags []diagnostic.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = diags
	s.dirty = true
}

// HashSource formats a stable, printer-rendered function declaration into
// the hash used as a cache key, so that renaming an unrelated variable
// elsewhere in the file never invalidates its cache entry. The declaration
// is rendered against an empty FileSet, so its original line breaks and
// spacing do not affect the hash.
func HashSource(fset *token.FileSet, decl *ast.FuncDecl) string {
	var buf bytes.Buffer
	// Best-effort: a printer failure (malformed AST) just means a cache
	// miss for this function, never an incorrect result.
	_ = printer.Fprint(&buf, token.NewFileSet(), decl)
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
