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

// Package services contains the business logic sitting between the HTTP
// handlers and the lower layers. This file defines the JournalService, which
// owns the journal document: entry CRUD, legacy imports, and the AI-assisted
// tagging operations.
package services

import (
	"context"
	"fmt"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/commands"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/store"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/workflow"
)

// JournalService wraps the document store with the workflows that enrich it.
type JournalService struct {
	Store        *store.DocumentStore // The single-document journal store.
	TagSuggester cor.Command          // Workflow producing tags for one entry.
	TagBackfill  cor.Command          // Workflow tagging every untagged entry.
}

// List returns all entries, newest first.
func (s *JournalService) List() []*model.Entry {
	return s.Store.List()
}

// Get returns the entry with the given id.
func (s *JournalService) Get(id string) (*model.Entry, error) {
	return s.Store.Get(id)
}

// Save creates or updates an entry, assigning identity when missing.
func (s *JournalService) Save(entry *model.Entry) (*model.Entry, error) {
	return s.Store.Put(entry)
}

// Delete removes an entry.
func (s *JournalService) Delete(id string) error {
	return s.Store.Delete(id)
}

// Import normalizes a raw journal document, legacy field aliases included,
// and appends the recovered entries to the store.
//
// Inputs:
//   - raw: The uploaded document bytes.
//
// Outputs:
//   - *store.ImportReport: Counts of imported entries and dropped values.
//   - error: An error when the document is unreadable or the store write fails.
func (s *JournalService) Import(raw []byte) (*store.ImportReport, error) {
	entries, report, err := store.NormalizeDocument(raw)
	if err != nil {
		return nil, err
	}
	if err := s.Store.Append(entries); err != nil {
		return nil, err
	}
	return report, nil
}

// SuggestTags runs the tag suggestion workflow against one entry and
// persists the result. Existing mood text is kept; the model only fills the
// gap.
//
// Inputs:
//   - ctx: The request context.
//   - id: The entry to tag.
//
// Outputs:
//   - *model.TagAnalysis: The suggested tags and mood.
//   - error: An error if the entry is missing or the workflow fails.
func (s *JournalService) SuggestTags(ctx context.Context, id string) (*model.TagAnalysis, error) {
	entry, err := s.Store.Get(id)
	if err != nil {
		return nil, err
	}

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(commands.GetEntriesParamName(), []*model.Entry{entry})
	defer chainCtx.Close()

	s.TagSuggester.Execute(chainCtx)
	if chainCtx.HasErrors() {
		return nil, firstError(chainCtx)
	}

	analysis, ok := chainCtx.Get(workflow.GetTagAnalysisParamName()).(*model.TagAnalysis)
	if !ok || analysis == nil {
		return nil, fmt.Errorf("tag suggestion produced no analysis")
	}

	entry.Tags = analysis.Tags
	if entry.Mood == "" {
		entry.Mood = analysis.Mood
	}
	if _, err := s.Store.Put(entry); err != nil {
		return nil, err
	}
	return analysis, nil
}

// FillMissingTags runs the batch backfill over the whole journal and
// persists every entry the workers tagged.
//
// Inputs:
//   - ctx: The request context.
//
// Outputs:
//   - int: The number of entries that gained tags.
//   - error: The first workflow or persistence error.
func (s *JournalService) FillMissingTags(ctx context.Context) (int, error) {
	entries := s.Store.List()

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(commands.GetEntriesParamName(), entries)
	defer chainCtx.Close()

	s.TagBackfill.Execute(chainCtx)

	updated, _ := chainCtx.Get(commands.GetUpdatedCountParamName()).(int)
	for _, entry := range entries {
		if len(entry.Tags) == 0 {
			continue
		}
		if _, err := s.Store.Put(entry); err != nil {
			return updated, err
		}
	}

	// A partial batch is still useful: report what was tagged along with the
	// first failure so the caller can decide whether to retry.
	if chainCtx.HasErrors() {
		return updated, firstError(chainCtx)
	}
	return updated, nil
}

// firstError flattens a chain's error map into one wrapped error.
func firstError(chainCtx cor.Context) error {
	for name, err := range chainCtx.GetErrors() {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
