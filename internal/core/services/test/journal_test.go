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

package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/commands"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/services"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/store"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-journal-cinema/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTagSuggester stands in for the tag analysis chain, returning a fixed
// analysis or an error.
type stubTagSuggester struct {
	cor.BaseCommand
	analysis *model.TagAnalysis
	fail     bool
}

func newStubTagSuggester(analysis *model.TagAnalysis, fail bool) *stubTagSuggester {
	cmd := &stubTagSuggester{
		BaseCommand: *cor.NewBaseCommand("stub-tag-suggester"),
		analysis:    analysis,
		fail:        fail,
	}
	cmd.InputParamName = commands.GetEntriesParamName()
	return cmd
}

func (c *stubTagSuggester) Execute(ctx cor.Context) {
	if c.fail {
		ctx.AddError(c.GetName(), fmt.Errorf("model unavailable"))
		return
	}
	ctx.Add(workflow.GetTagAnalysisParamName(), c.analysis)
}

// stubTagBackfill applies one fixed tag to every untagged entry.
type stubTagBackfill struct {
	cor.BaseCommand
}

func (c *stubTagBackfill) Execute(ctx cor.Context) {
	entries, _ := ctx.Get(commands.GetEntriesParamName()).([]*model.Entry)
	updated := 0
	for _, entry := range entries {
		if len(entry.Tags) == 0 {
			entry.Tags = []string{"backfilled"}
			updated++
		}
	}
	ctx.Add(commands.GetUpdatedCountParamName(), updated)
}

func newJournalService(t *testing.T, suggester cor.Command) *services.JournalService {
	t.Helper()
	documentStore, err := store.NewDocumentStore(t.TempDir())
	require.NoError(t, err)
	return &services.JournalService{
		Store:        documentStore,
		TagSuggester: suggester,
		TagBackfill:  &stubTagBackfill{BaseCommand: *cor.NewBaseCommand("stub-tag-backfill")},
	}
}

func TestJournalServiceSuggestTagsPersists(t *testing.T) {
	analysis := &model.TagAnalysis{Tags: []string{"travel", "family"}, Mood: "wistful"}
	journal := newJournalService(t, newStubTagSuggester(analysis, false))

	entry, err := journal.Save(model.NewEntry("drove out to the old house"))
	require.NoError(t, err)

	got, err := journal.SuggestTags(context.Background(), entry.Id)
	require.NoError(t, err)
	assert.Equal(t, analysis.Tags, got.Tags)

	saved, err := journal.Get(entry.Id)
	require.NoError(t, err)
	assert.Equal(t, []string{"travel", "family"}, saved.Tags)
	assert.Equal(t, "wistful", saved.Mood)
}

func TestJournalServiceSuggestTagsKeepsExistingMood(t *testing.T) {
	analysis := &model.TagAnalysis{Tags: []string{"work"}, Mood: "anxious"}
	journal := newJournalService(t, newStubTagSuggester(analysis, false))

	entry := model.NewEntry("quarterly review day")
	entry.Mood = "confident"
	entry, err := journal.Save(entry)
	require.NoError(t, err)

	_, err = journal.SuggestTags(context.Background(), entry.Id)
	require.NoError(t, err)

	saved, err := journal.Get(entry.Id)
	require.NoError(t, err)
	assert.Equal(t, "confident", saved.Mood)
}

func TestJournalServiceSuggestTagsErrors(t *testing.T) {
	journal := newJournalService(t, newStubTagSuggester(nil, true))

	_, err := journal.SuggestTags(context.Background(), "missing-entry")
	assert.ErrorIs(t, err, store.ErrEntryNotFound)

	entry, err := journal.Save(model.NewEntry("an ordinary tuesday"))
	require.NoError(t, err)

	_, err = journal.SuggestTags(context.Background(), entry.Id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestJournalServiceFillMissingTags(t *testing.T) {
	journal := newJournalService(t, newStubTagSuggester(nil, false))

	tagged := model.NewEntry("already categorized")
	tagged.Tags = []string{"existing"}
	_, err := journal.Save(tagged)
	require.NoError(t, err)
	_, err = journal.Save(model.NewEntry("waiting for tags"))
	require.NoError(t, err)

	updated, err := journal.FillMissingTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	for _, entry := range journal.List() {
		assert.NotEmpty(t, entry.Tags)
	}
}

func TestJournalServiceImportLegacyDocument(t *testing.T) {
	journal := newJournalService(t, newStubTagSuggester(nil, false))

	report, err := journal.Import([]byte(test.GetTestLegacyDocumentText()))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 2, report.DroppedPhotos)

	entries := journal.List()
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.NotEmpty(t, entry.Id)
		assert.NotEmpty(t, entry.Content)
	}
}
