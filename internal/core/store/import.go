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

// Package store persists the journal document. This file implements the
// import path: turning an externally produced JSON document into canonical
// entries. Several generations of export formats are accepted, so each raw
// entry goes through a single normalization function with a documented
// precedence order for the legacy field aliases, rather than ad hoc
// fallbacks at the call sites.
//
// Accepted document shapes:
//   - a top-level JSON list of entry-like objects, or
//   - an object with an `entries` field holding such a list.
//
// Anything else imports zero entries without error; the caller can surface
// that as a dismissible notice.
package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
)

// rawEntry is the permissive shape a single imported entry is decoded into.
// It carries both the canonical field names and their legacy aliases; photos
// decode as bare JSON values because old exports mixed strings with other
// types in the list.
type rawEntry struct {
	Id           string            `json:"id"`
	Date         string            `json:"date"`
	CreationDate string            `json:"creationDate"` // Legacy alias for date.
	Content      string            `json:"content"`
	Text         string            `json:"text"` // Legacy alias for content.
	Photos       []json.RawMessage `json:"photos"`
	Mood         string            `json:"mood"`
	Tags         []string          `json:"tags"`
}

// rawDocument matches the object form of an import payload.
type rawDocument struct {
	Entries []json.RawMessage `json:"entries"`
}

// ImportReport summarizes one import. Imports never fail per entry; instead
// the report carries per-entry diagnostics so the caller can decide what to
// surface. DroppedPhotos counts photo values that were not strings and were
// left out of the normalized entries.
type ImportReport struct {
	Imported      int `json:"imported"`       // Number of entries normalized and stored.
	Skipped       int `json:"skipped"`        // Raw list items that were not objects.
	DroppedPhotos int `json:"dropped_photos"` // Non-string photo values left out.
}

// NormalizeDocument parses an import payload and normalizes every entry-like
// object it contains into the canonical entry shape.
//
// Inputs:
//   - raw: the import document bytes.
//
// Outputs:
//   - []*model.Entry: the normalized entries, in document order.
//   - *ImportReport: per-entry diagnostics for the import.
//   - error: an error only when the payload is not valid JSON at all. A
//     valid document with an unexpected shape imports zero entries.
func NormalizeDocument(raw []byte) ([]*model.Entry, *ImportReport, error) {
	report := &ImportReport{}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Not a list. Try the object form with an `entries` field.
		var doc rawDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, nil, err
		}
		items = doc.Entries
	}

	entries := make([]*model.Entry, 0, len(items))
	for _, item := range items {
		var re rawEntry
		if err := json.Unmarshal(item, &re); err != nil {
			report.Skipped++
			continue
		}
		entries = append(entries, normalizeEntry(&re, report))
	}
	report.Imported = len(entries)
	return entries, report, nil
}

// normalizeEntry maps one raw entry onto the canonical shape. Alias
// precedence: `content` wins over legacy `text`, `date` wins over legacy
// `creationDate`. Missing IDs are regenerated and missing dates default to
// the import time so every imported entry lands on the timeline.
func normalizeEntry(re *rawEntry, report *ImportReport) *model.Entry {
	entry := &model.Entry{
		Id:      re.Id,
		Date:    re.Date,
		Content: re.Content,
		Mood:    re.Mood,
		Tags:    re.Tags,
		Photos:  make([]string, 0, len(re.Photos)),
	}
	if entry.Content == "" {
		entry.Content = re.Text
	}
	if entry.Date == "" {
		entry.Date = re.CreationDate
	}
	if entry.Id == "" {
		entry.Id = uuid.NewString()
	}
	if entry.Date == "" {
		entry.Date = time.Now().Format(model.DateLayout)
	}
	for _, p := range re.Photos {
		var s string
		// Unmarshaling a JSON null into a string is a no-op, so it has to be
		// rejected explicitly alongside the values that fail to decode.
		if err := json.Unmarshal(p, &s); err != nil || s == "" {
			// Old exports occasionally hold photo objects here. They cannot
			// be normalized, so they are dropped and counted.
			report.DroppedPhotos++
			continue
		}
		entry.Photos = append(entry.Photos, s)
	}
	return entry
}
