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

// Package commands contains the atomic workflow steps for the generation
// pipelines. This file defines the entry digest command, which flattens a
// set of journal entries into the dated plain-text block the analysis
// prompts consume. The models only need enough text to work from, so the
// digest is capped at a configured rune budget; entries are included in the
// order the caller provides and the cap cuts off the tail.
package commands

import (
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
)

// EntryDigest converts journal entries to capped prompt text.
type EntryDigest struct {
	cor.BaseCommand
	charLimit int // Max runes of digest text produced.
}

// NewEntryDigest creates the digest command. The input parameter defaults to
// the shared entries key because every workflow seeds its entries there.
//
// Inputs:
//   - name: the command name.
//   - charLimit: maximum runes of digest text; 0 disables the cap.
//
// Outputs:
//   - *EntryDigest: the command.
func NewEntryDigest(name string, charLimit int) *EntryDigest {
	out := &EntryDigest{BaseCommand: *cor.NewBaseCommand(name), charLimit: charLimit}
	out.InputParamName = GetEntriesParamName()
	return out
}

// Execute flattens the entries into one dated text block and applies the
// rune cap.
func (c *EntryDigest) Execute(context cor.Context) {
	entries, ok := context.Get(c.GetInputParam()).([]*model.Entry)
	if !ok || len(entries) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("no journal entries to digest"))
		return
	}

	var builder strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&builder, "## %s\n", entry.Date)
		if entry.Mood != "" {
			fmt.Fprintf(&builder, "Mood: %s\n", entry.Mood)
		}
		if len(entry.Tags) > 0 {
			fmt.Fprintf(&builder, "Tags: %s\n", strings.Join(entry.Tags, ", "))
		}
		builder.WriteString(entry.Content)
		builder.WriteString("\n\n")
	}

	digest := builder.String()
	if c.charLimit > 0 {
		if runes := []rune(digest); len(runes) > c.charLimit {
			digest = string(runes[:c.charLimit])
		}
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), digest)
}
