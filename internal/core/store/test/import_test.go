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
// This file covers the import normalization: legacy field aliases, both
// accepted document shapes, and the per-entry diagnostics report.
package store_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	zassert "github.com/zeebo/assert"
)

// TestNormalizeTopLevelList imports the list document shape with canonical
// field names.
func TestNormalizeTopLevelList(t *testing.T) {
	doc := []byte(`[
		{"id": "e1", "date": "2024-01-02T03:04:05Z", "content": "a walk in the rain", "photos": [], "tags": ["weather"]},
		{"id": "e2", "date": "2024-01-03T03:04:05Z", "content": "soup night"}
	]`)
	entries, report, err := store.NormalizeDocument(doc)
	require.NoError(t, err)
	require.Equal(t, 2, len(entries))
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, "a walk in the rain", entries[0].Content)
	assert.Equal(t, []string{"weather"}, entries[0].Tags)
}

// TestNormalizeEntriesObject imports the object document shape with an
// `entries` field.
func TestNormalizeEntriesObject(t *testing.T) {
	doc := []byte(`{"entries": [{"content": "wrapped in an object"}]}`)
	entries, report, err := store.NormalizeDocument(doc)
	require.NoError(t, err)
	require.Equal(t, 1, len(entries))
	assert.Equal(t, 1, report.Imported)
	// Missing identity fields are filled in during normalization.
	assert.NotEmpty(t, entries[0].Id)
	assert.NotEmpty(t, entries[0].Date)
}

// TestNormalizeLegacyAliases checks the documented precedence: `content`
// wins over legacy `text`, `date` wins over legacy `creationDate`, and the
// legacy names still work when the canonical ones are absent.
func TestNormalizeLegacyAliases(t *testing.T) {
	doc := []byte(`[
		{"text": "legacy only", "creationDate": "2020-06-01T00:00:00Z"},
		{"content": "canonical wins", "text": "ignored", "date": "2024-06-01T00:00:00Z", "creationDate": "2020-06-01T00:00:00Z"}
	]`)
	entries, _, err := store.NormalizeDocument(doc)
	require.NoError(t, err)
	require.Equal(t, 2, len(entries))

	zassert.Equal(t, "legacy only", entries[0].Content)
	zassert.Equal(t, "2020-06-01T00:00:00Z", entries[0].Date)
	zassert.Equal(t, "canonical wins", entries[1].Content)
	zassert.Equal(t, "2024-06-01T00:00:00Z", entries[1].Date)
}

// TestNormalizeDropsNonStringPhotos verifies that photo values that are not
// strings are left out of the entry and counted in the report instead of
// failing the import.
func TestNormalizeDropsNonStringPhotos(t *testing.T) {
	doc := []byte(`[{"content": "mixed photos", "photos": ["aGVsbG8=", 42, {"uri": "x"}, "d29ybGQ="]}]`)
	entries, report, err := store.NormalizeDocument(doc)
	require.NoError(t, err)
	require.Equal(t, 1, len(entries))
	assert.Equal(t, []string{"aGVsbG8=", "d29ybGQ="}, entries[0].Photos)
	assert.Equal(t, 2, report.DroppedPhotos)
}

// TestNormalizeNonListDocument verifies that a valid JSON document that is
// neither a list nor an entries object imports zero entries without error.
func TestNormalizeNonListDocument(t *testing.T) {
	entries, report, err := store.NormalizeDocument([]byte(`{"settings": {"theme": "dark"}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, len(entries))
	assert.Equal(t, 0, report.Imported)
}

// TestNormalizeInvalidJson verifies that unparsable payloads are the one
// hard import failure.
func TestNormalizeInvalidJson(t *testing.T) {
	_, _, err := store.NormalizeDocument([]byte(`{"entries": [`))
	require.Error(t, err)
}
