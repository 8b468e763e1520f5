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

// Package model defines the core data structures for the application.
// This file contains the persistent journal shapes: the diary entries a user
// writes and the document that holds the whole journal. Entries are stored
// as one ordered JSON collection (see the store package), so these structs
// are both the API representation and the on-disk representation.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format for entry dates. Entries carry
// the date as an ISO-8601 string rather than a time.Time so that documents
// written by older clients round-trip byte for byte.
const DateLayout = time.RFC3339

// Entry is a single diary entry. Photos are stored inline as standard-base64
// image payloads, the same encoding the synthesis providers use for audio, so
// the whole journal serializes as one self-contained document.
type Entry struct {
	Id      string   `json:"id"`             // Unique identifier, a random UUID string.
	Date    string   `json:"date"`           // ISO-8601 creation date.
	Content string   `json:"content"`        // The entry text as authored.
	Photos  []string `json:"photos"`         // Base64-encoded images attached to the entry.
	Mood    string   `json:"mood,omitempty"` // Optional mood label, user-set or model-suggested.
	Tags    []string `json:"tags,omitempty"` // Optional tag list, user-set or model-suggested.
}

// NewEntry creates a new Entry with a generated ID, the current time as its
// date, and initialized slice fields.
//
// Inputs:
//   - content: the entry text.
//
// Outputs:
//   - *Entry: a pointer to the new entry.
func NewEntry(content string) *Entry {
	return &Entry{
		Id:      uuid.NewString(),
		Date:    time.Now().Format(DateLayout),
		Content: content,
		Photos:  make([]string, 0),
		Tags:    make([]string, 0),
	}
}

// Journal is the top-level persisted document: the full ordered collection of
// entries plus the document revision metadata. The store reads and writes it
// as a single unit.
type Journal struct {
	Entries []*Entry `json:"entries"`    // All entries, in insertion order.
	SavedAt string   `json:"saved_at"`   // ISO-8601 time of the last successful write.
}

// NewJournal creates an empty journal document with an initialized entry
// slice.
func NewJournal() *Journal {
	return &Journal{Entries: make([]*Entry, 0)}
}
