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

// Package store_test contains unit tests for the journal document store.
// The store writes the whole journal as one JSON document, so the tests
// exercise the document lifecycle end to end against a temp directory.
package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPutGetDelete exercises the basic entry lifecycle and verifies the
// document lands on disk under the fixed file name.
func TestPutGetDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := store.NewDocumentStore(dir)
	require.NoError(t, err)

	entry := model.NewEntry("first entry")
	stored, err := s.Put(entry)
	require.NoError(t, err)
	assert.Equal(t, entry.Id, stored.Id)

	got, err := s.Get(entry.Id)
	require.NoError(t, err)
	assert.Equal(t, "first entry", got.Content)

	// The whole journal is one document at a fixed name.
	_, err = os.Stat(filepath.Join(dir, store.DocumentFileName))
	require.NoError(t, err)

	require.NoError(t, s.Delete(entry.Id))
	_, err = s.Get(entry.Id)
	assert.True(t, errors.Is(err, store.ErrEntryNotFound))
}

// TestPutAssignsIdentity verifies that an entry arriving without an ID or
// date is assigned both, and that a second Put with the same ID replaces
// rather than duplicates.
func TestPutAssignsIdentity(t *testing.T) {
	s, err := store.NewDocumentStore(t.TempDir())
	require.NoError(t, err)

	entry := &model.Entry{Content: "no identity yet"}
	stored, err := s.Put(entry)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Id)
	assert.NotEmpty(t, stored.Date)

	stored.Content = "edited"
	_, err = s.Put(stored)
	require.NoError(t, err)
	assert.Equal(t, 1, len(s.List()))
	got, err := s.Get(stored.Id)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Content)
}

// TestReloadFromDisk verifies that a second store instance pointed at the
// same directory sees the entries the first one wrote.
func TestReloadFromDisk(t *testing.T) {
	dir := t.TempDir()
	first, err := store.NewDocumentStore(dir)
	require.NoError(t, err)
	_, err = first.Put(model.NewEntry("persisted"))
	require.NoError(t, err)

	second, err := store.NewDocumentStore(dir)
	require.NoError(t, err)
	entries := second.List()
	require.Equal(t, 1, len(entries))
	assert.Equal(t, "persisted", entries[0].Content)
}

// TestListOrdersNewestFirst verifies the reverse-chronological ordering of
// the timeline, with undated entries sorted to the end.
func TestListOrdersNewestFirst(t *testing.T) {
	s, err := store.NewDocumentStore(t.TempDir())
	require.NoError(t, err)

	older := &model.Entry{Id: "a", Date: "2023-05-01T10:00:00Z", Content: "older"}
	newer := &model.Entry{Id: "b", Date: "2024-05-01T10:00:00Z", Content: "newer"}
	undated := &model.Entry{Id: "c", Date: "unparseable", Content: "undated"}
	require.NoError(t, s.Append([]*model.Entry{older, undated, newer}))

	entries := s.List()
	require.Equal(t, 3, len(entries))
	assert.Equal(t, "newer", entries[0].Content)
	assert.Equal(t, "older", entries[1].Content)
	assert.Equal(t, "undated", entries[2].Content)
}

// TestEntriesCrossBoundaryAsCopies verifies that the store never shares
// entry pointers with callers. Workflows mutate the entries they hold for
// minutes at a time while handlers read the journal concurrently, so a
// mutation on either side of the boundary must not be visible on the other
// until it goes back through Put.
func TestEntriesCrossBoundaryAsCopies(t *testing.T) {
	s, err := store.NewDocumentStore(t.TempDir())
	require.NoError(t, err)

	entry := model.NewEntry("boundary check")
	entry.Tags = []string{"original"}
	entry.Photos = []string{"aGVsbG8="}
	_, err = s.Put(entry)
	require.NoError(t, err)

	// Mutating the entry handed to Put must not reach the journal.
	entry.Content = "mutated after put"
	entry.Tags[0] = "mutated"

	got, err := s.Get(entry.Id)
	require.NoError(t, err)
	assert.Equal(t, "boundary check", got.Content)
	assert.Equal(t, []string{"original"}, got.Tags)

	// Mutating a Get result must not reach the journal either.
	got.Mood = "tampered"
	got.Tags = append(got.Tags, "extra")
	got.Photos[0] = "tampered"

	listed := s.List()
	require.Equal(t, 1, len(listed))
	assert.Empty(t, listed[0].Mood)
	assert.Equal(t, []string{"original"}, listed[0].Tags)
	assert.Equal(t, []string{"aGVsbG8="}, listed[0].Photos)

	// And the same for List results.
	listed[0].Content = "tampered"
	fresh, err := s.Get(entry.Id)
	require.NoError(t, err)
	assert.Equal(t, "boundary check", fresh.Content)
}
