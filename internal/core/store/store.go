// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package store persists the journal as a single JSON document on local disk.
// This is deliberately not a database: the journal is one ordered collection
// of entries read and written as a whole, with no indexing, no migrations,
// and no partial writes. A mutex serializes access, and writes go through a
// temp file plus rename so an interrupted save never truncates the document.
//
// Logic Flow:
//  1. NewDocumentStore opens (or creates) the document under the configured
//     data directory at a fixed file name.
//  2. Mutating calls (Put, Delete, Append) modify the in-memory journal
//     and then write the whole document back out.
//  3. Read calls (List, Get) serve copies from the in-memory journal, so
//     callers never hold pointers into the locked document.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
)

// DocumentFileName is the fixed name of the journal document inside the data
// directory. The store owns exactly one document.
const DocumentFileName = "journal.json"

// ErrEntryNotFound is returned by Get and Delete when no entry carries the
// requested ID.
var ErrEntryNotFound = errors.New("store: entry not found")

// DocumentStore holds the journal document in memory and mirrors every
// mutation to disk as one whole-document write.
type DocumentStore struct {
	path    string         // Full path of the journal document.
	mu      sync.Mutex     // Serializes all document access.
	journal *model.Journal // The in-memory copy of the document.
}

// NewDocumentStore creates a store rooted at the given data directory and
// loads the existing document if one is present. A missing document is not
// an error; the store starts with an empty journal.
//
// Inputs:
//   - dataDir: directory that holds the journal document. Created if absent.
//
// Outputs:
//   - *DocumentStore: the ready-to-use store.
//   - error: an error if the directory cannot be created or an existing
//     document cannot be parsed.
func NewDocumentStore(dataDir string) (*DocumentStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	s := &DocumentStore{
		path:    filepath.Join(dataDir, DocumentFileName),
		journal: model.NewJournal(),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the document from disk into memory. Called once at startup.
func (s *DocumentStore) load() error {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read journal document: %w", err)
	}
	journal := model.NewJournal()
	if err := json.Unmarshal(raw, journal); err != nil {
		return fmt.Errorf("failed to parse journal document %s: %w", s.path, err)
	}
	s.journal = journal
	return nil
}

// save writes the in-memory journal back to disk as one document. The write
// lands in a temp file first and is renamed into place; rename is atomic on
// POSIX filesystems, so readers never observe a half-written document.
// Callers must hold s.mu.
func (s *DocumentStore) save() error {
	s.journal.SavedAt = time.Now().Format(model.DateLayout)
	raw, err := json.MarshalIndent(s.journal, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize journal document: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write journal document: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace journal document: %w", err)
	}
	return nil
}

// cloneEntry deep-copies an entry. The store never shares entry pointers
// with callers: workflows mutate entries for minutes at a time while
// handlers read them, so everything crossing the store boundary is a copy.
func cloneEntry(e *model.Entry) *model.Entry {
	out := *e
	out.Photos = append([]string(nil), e.Photos...)
	out.Tags = append([]string(nil), e.Tags...)
	return &out
}

// List returns copies of all entries sorted newest first. Entries whose
// dates do not parse sort after dated ones, keeping legacy imports visible
// at the end of the timeline rather than dropped.
func (s *DocumentStore) List() []*model.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Parse each date once up front; the comparator only compares keys.
	type datedEntry struct {
		entry *model.Entry
		at    time.Time
		dated bool
	}
	keyed := make([]datedEntry, len(s.journal.Entries))
	for i, e := range s.journal.Entries {
		at, err := time.Parse(model.DateLayout, e.Date)
		keyed[i] = datedEntry{entry: cloneEntry(e), at: at, dated: err == nil}
	}
	sort.SliceStable(keyed, func(i, j int) bool {
		if !keyed[i].dated {
			return false
		}
		if !keyed[j].dated {
			return true
		}
		return keyed[i].at.After(keyed[j].at)
	})

	out := make([]*model.Entry, len(keyed))
	for i, k := range keyed {
		out[i] = k.entry
	}
	return out
}

// Get returns a copy of the entry with the given ID or ErrEntryNotFound.
func (s *DocumentStore) Get(id string) (*model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.journal.Entries {
		if e.Id == id {
			return cloneEntry(e), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// Put inserts or replaces an entry and writes the document. An entry without
// an ID is treated as new and assigned one; an entry whose ID matches an
// existing entry replaces it in place, preserving collection order.
//
// Outputs:
//   - *model.Entry: the stored entry, with its ID populated.
//   - error: an error if the document write fails.
func (s *DocumentStore) Put(entry *model.Entry) (*model.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Id == "" {
		entry.Id = uuid.NewString()
	}
	if entry.Date == "" {
		entry.Date = time.Now().Format(model.DateLayout)
	}
	// The journal keeps its own copy; the caller's pointer stays theirs.
	stored := cloneEntry(entry)
	replaced := false
	for i, e := range s.journal.Entries {
		if e.Id == stored.Id {
			s.journal.Entries[i] = stored
			replaced = true
			break
		}
	}
	if !replaced {
		s.journal.Entries = append(s.journal.Entries, stored)
	}
	if err := s.save(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes the entry with the given ID and writes the document.
func (s *DocumentStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.journal.Entries {
		if e.Id == id {
			s.journal.Entries = append(s.journal.Entries[:i], s.journal.Entries[i+1:]...)
			return s.save()
		}
	}
	return fmt.Errorf("%w: %s", ErrEntryNotFound, id)
}

// Append adds a batch of entries to the end of the collection in one
// document write. Used by import so a large legacy journal lands in a single
// save rather than one write per entry.
func (s *DocumentStore) Append(entries []*model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range entries {
		s.journal.Entries = append(s.journal.Entries, cloneEntry(entry))
	}
	return s.save()
}
