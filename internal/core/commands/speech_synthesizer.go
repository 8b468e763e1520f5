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

// This file defines the command that turns a narration script or anthem
// lyric into spoken audio with the Gemini text-to-speech models.
//
// Logic Flow:
//  1. It receives the generated analysis struct (a memory script or cinema
//     profile) from the context and extracts the text to speak with the
//     extractor function supplied at construction.
//  2. It calls the TTS model with the AUDIO response modality and the
//     configured prebuilt voice.
//  3. The model returns raw PCM samples with no container around them. The
//     command emits the samples as a standard base64 string so the next
//     command (`NarrationBuilder`) can wrap them into a playable WAV file.
package commands

import (
	"encoding/base64"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"google.golang.org/genai"
)

// SpeechSynthesizer is a command that converts text to base64 PCM audio.
type SpeechSynthesizer struct {
	cor.BaseCommand
	genaiClient              *genai.Client                     // The generative AI client used for the TTS call.
	speechConfig             *cloud.SpeechModel                // The TTS model name, voice, and PCM parameters.
	textFn                   func(interface{}) (string, error) // Extracts the text to speak from the input value.
	geminiOutputTokenCounter metric.Int64Counter               // OTel counter for output tokens.
}

// NewSpeechSynthesizer is the constructor for the SpeechSynthesizer command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - genaiClient: The generative AI client.
//   - speechConfig: The TTS model configuration.
//   - textFn: A function that pulls the narration text out of the input value.
//
// Outputs:
//   - *SpeechSynthesizer: A pointer to the newly instantiated command.
func NewSpeechSynthesizer(
	name string,
	genaiClient *genai.Client,
	speechConfig *cloud.SpeechModel,
	textFn func(interface{}) (string, error)) *SpeechSynthesizer {
	out := &SpeechSynthesizer{
		BaseCommand:  *cor.NewBaseCommand(name),
		genaiClient:  genaiClient,
		speechConfig: speechConfig,
		textFn:       textFn}

	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))

	return out
}

// Execute contains the core logic for the text-to-speech request.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *SpeechSynthesizer) Execute(context cor.Context) {
	text, err := t.textFn(context.Get(t.GetInputParam()))
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("no narration text available: %w", err))
		return
	}

	contents := []*genai.Content{
		{Parts: []*genai.Part{
			{Text: text},
		},
			Role: "user"},
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: t.speechConfig.Voice,
				},
			},
		},
	}

	resp, err := t.genaiClient.Models.GenerateContent(context.GetContext(), t.speechConfig.Model, contents, config)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("speech synthesis failed: %w", err))
		return
	}
	if resp.UsageMetadata != nil {
		t.geminiOutputTokenCounter.Add(context.GetContext(), int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	pcm := extractInlineAudio(resp)
	if len(pcm) == 0 {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("speech synthesis returned no audio data"))
		return
	}

	// The synthesis provider contract is base64 text, not raw bytes. The
	// narration builder decodes and wraps it downstream.
	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), base64.StdEncoding.EncodeToString(pcm))
}

// extractInlineAudio pulls the first inline audio blob out of a model
// response, or returns nil when the response carries none.
func extractInlineAudio(resp *genai.GenerateContentResponse) []byte {
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}
