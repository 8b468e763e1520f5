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

// Package commands_test exercises the workflow commands that run without
// cloud services: the entry digest, the JSON converter, the narration
// packager, and the reference image extractor.
package commands_test

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/commands"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newCommandContext() cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	return chainCtx
}

func seedEntries(chainCtx cor.Context, entries ...*model.Entry) {
	chainCtx.Add(commands.GetEntriesParamName(), entries)
}

func TestEntryDigestFormatsEntries(t *testing.T) {
	entry := model.NewEntry("Hiked the ridge trail before work.")
	entry.Date = "2025-05-01T07:00:00Z"
	entry.Mood = "energized"
	entry.Tags = []string{"hiking", "morning"}

	chainCtx := newCommandContext()
	seedEntries(chainCtx, entry)

	commands.NewEntryDigest("digest", 0).Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	digest, ok := chainCtx.Get(cor.CtxOut).(string)
	require.True(t, ok)
	assert.Contains(t, digest, "## 2025-05-01T07:00:00Z")
	assert.Contains(t, digest, "Mood: energized")
	assert.Contains(t, digest, "Tags: hiking, morning")
	assert.Contains(t, digest, "Hiked the ridge trail")
}

func TestEntryDigestAppliesCharLimit(t *testing.T) {
	entry := model.NewEntry(strings.Repeat("a", 500))

	chainCtx := newCommandContext()
	seedEntries(chainCtx, entry)

	commands.NewEntryDigest("digest", 100).Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	digest, ok := chainCtx.Get(cor.CtxOut).(string)
	require.True(t, ok)
	assert.Equal(t, 100, len([]rune(digest)))
}

func TestEntryDigestRequiresEntries(t *testing.T) {
	chainCtx := newCommandContext()
	commands.NewEntryDigest("digest", 0).Execute(chainCtx)
	assert.True(t, chainCtx.HasErrors())
}

func TestJsonToStructParsesAnalysis(t *testing.T) {
	chainCtx := newCommandContext()
	chainCtx.Add(cor.CtxIn, `{"tags": ["rain", "reading"], "mood": "cozy"}`)

	commands.NewJsonToStruct[model.TagAnalysis]("convert", "analysis").Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	analysis, ok := chainCtx.Get("analysis").(*model.TagAnalysis)
	require.True(t, ok)
	assert.Equal(t, []string{"rain", "reading"}, analysis.Tags)
	assert.Equal(t, "cozy", analysis.Mood)
	// The parsed struct also rides the piping slot for the next command.
	assert.Equal(t, analysis, chainCtx.Get(cor.CtxOut))
}

func TestJsonToStructRejectsInvalidJson(t *testing.T) {
	chainCtx := newCommandContext()
	chainCtx.Add(cor.CtxIn, "the model returned prose instead of JSON")

	commands.NewJsonToStruct[model.TagAnalysis]("convert", "analysis").Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Nil(t, chainCtx.Get("analysis"))
}

func TestNarrationBuilderProducesWav(t *testing.T) {
	pcm := make([]byte, 2400)
	payload := base64.StdEncoding.EncodeToString(pcm)

	chainCtx := newCommandContext()
	chainCtx.Add(cor.CtxIn, payload)

	speech := &cloud.SpeechModel{SampleRate: 24000, ChannelCount: 1, BitsPerSample: 16}
	commands.NewNarrationBuilder("package", speech).Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	wav, ok := chainCtx.Get(cor.CtxOut).([]byte)
	require.True(t, ok)
	require.Equal(t, 44+len(pcm), len(wav))
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
}

func TestNarrationBuilderRejectsBadPayload(t *testing.T) {
	chainCtx := newCommandContext()
	chainCtx.Add(cor.CtxIn, "not!!!base64")

	speech := &cloud.SpeechModel{SampleRate: 24000, ChannelCount: 1, BitsPerSample: 16}
	commands.NewNarrationBuilder("package", speech).Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
}

func TestReferenceImageExtractorPicksNewestPhoto(t *testing.T) {
	// A tiny PNG signature so the type sniffer has magic bytes to work with.
	pngBytes := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	newest := model.NewEntry("latest entry, no photo")
	withPhoto := model.NewEntry("entry with a photo")
	withPhoto.Photos = []string{base64.StdEncoding.EncodeToString(pngBytes)}

	chainCtx := newCommandContext()
	seedEntries(chainCtx, newest, withPhoto)

	commands.NewReferenceImageExtractor("extract").Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	image, ok := chainCtx.Get(commands.GetReferenceImageParamName()).(*genai.Image)
	require.True(t, ok)
	assert.Equal(t, pngBytes, image.ImageBytes)
	assert.Equal(t, "image/png", image.MIMEType)
}

func TestReferenceImageExtractorNoPhotosIsNotAnError(t *testing.T) {
	chainCtx := newCommandContext()
	seedEntries(chainCtx, model.NewEntry("text only"))

	commands.NewReferenceImageExtractor("extract").Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	assert.Nil(t, chainCtx.Get(commands.GetReferenceImageParamName()))
}
