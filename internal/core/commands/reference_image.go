// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file defines the command that picks a reference image for video
// synthesis. Journal entries store photos as base64 strings, and the video
// model produces far more personal results when it is seeded with a real
// photo from the period being dramatized. The newest entry that carries a
// photo wins.
//
// A journal with no photos is normal, so finding none is a no-op rather
// than an error. A photo that fails to decode is skipped the same way; the
// video is still generated, just without the visual anchor.
package commands

import (
	"fmt"

	"github.com/h2non/filetype"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/audio"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
	"google.golang.org/genai"
)

// ReferenceImageExtractor is a command that finds the most recent entry
// photo and publishes it as a `genai.Image` for the video submitter.
type ReferenceImageExtractor struct {
	cor.BaseCommand
}

// NewReferenceImageExtractor is the constructor for the ReferenceImageExtractor command.
//
// Inputs:
//   - name: A string name for this command instance.
//
// Outputs:
//   - *ReferenceImageExtractor: A pointer to the newly instantiated command.
func NewReferenceImageExtractor(name string) *ReferenceImageExtractor {
	out := &ReferenceImageExtractor{BaseCommand: *cor.NewBaseCommand(name)}
	out.InputParamName = GetEntriesParamName()
	out.OutputParamName = GetReferenceImageParamName()
	return out
}

// Execute scans the entries newest-first and decodes the first usable photo.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *ReferenceImageExtractor) Execute(context cor.Context) {
	entries, ok := context.Get(t.GetInputParam()).([]*model.Entry)
	if !ok {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("expected journal entries in context parameter %q", t.GetInputParam()))
		return
	}

	// The entry list arrives newest-first from the store, so the first hit
	// is the most recent photo in the journal.
	for _, entry := range entries {
		for _, photo := range entry.Photos {
			data, err := audio.DecodePayload(photo)
			if err != nil || len(data) == 0 {
				continue
			}

			// Sniff the MIME type from the magic bytes. The journal format
			// does not record one, and the video API requires it.
			mimeType := "image/jpeg"
			if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
				mimeType = kind.MIME.Value
			}

			t.GetSuccessCounter().Add(context.GetContext(), 1)
			context.Add(t.GetOutputParam(), &genai.Image{ImageBytes: data, MIMEType: mimeType})
			return
		}
	}

	// No photo anywhere in the journal. The video submitter treats a missing
	// reference image as text-only generation.
	t.GetSuccessCounter().Add(context.GetContext(), 1)
}
