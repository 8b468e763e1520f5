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

// Package workflow defines the high-level business logic orchestrations,
// combining various commands into coherent pipelines. This file implements
// the standalone speech workflow behind the direct text-to-speech endpoint:
// speak the given text and hand back a playable WAV, with no storage
// involved.
package workflow

import (
	"context"
	"fmt"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/commands"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
)

// getWavParamName is the context key the narration builder writes the
// finished WAV bytes to.
const getWavParamName = "__wav__"

// SpeechWorkflow converts arbitrary text into WAV audio bytes.
type SpeechWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

// Execute runs the speech chain. The caller seeds the default input with
// the text to speak.
func (m *SpeechWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// Synthesize speaks the given text and returns the WAV bytes. It is the
// convenience entry point for the synchronous speech endpoint.
//
// Inputs:
//   - ctx: The request context.
//   - text: The text to speak.
//
// Outputs:
//   - []byte: A complete WAV file.
//   - error: The first chain error, if any step failed.
func (m *SpeechWorkflow) Synthesize(ctx context.Context, text string) ([]byte, error) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, text)
	defer chainCtx.Close()

	m.chain.Execute(chainCtx)
	if chainCtx.HasErrors() {
		for name, err := range chainCtx.GetErrors() {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	wav, ok := chainCtx.Get(getWavParamName).([]byte)
	if !ok || len(wav) == 0 {
		return nil, fmt.Errorf("speech synthesis produced no audio")
	}
	return wav, nil
}

// NewSpeechPipeline is the constructor for the SpeechWorkflow.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for GCP services.
//
// Returns:
//   - A pointer to a newly created and fully initialized SpeechWorkflow.
func NewSpeechPipeline(config *cloud.Config, serviceClients *cloud.ServiceClients) *SpeechWorkflow {
	speechConfig := config.SpeechModels["narrator"]

	out := cor.NewBaseChain("speech-chain")
	out.AddCommand(commands.NewSpeechSynthesizer("synthesize-speech", serviceClients.GenAIClient, &speechConfig, plainText))

	builder := commands.NewNarrationBuilder("build-speech-wav", &speechConfig)
	builder.OutputParamName = getWavParamName
	out.AddCommand(builder)

	return &SpeechWorkflow{
		BaseCommand: *cor.NewBaseCommand("speech-pipeline"),
		chain:       out,
	}
}

// plainText passes a string input through unmodified.
func plainText(v interface{}) (string, error) {
	text, ok := v.(string)
	if !ok || text == "" {
		return "", fmt.Errorf("no text to speak")
	}
	return text, nil
}
