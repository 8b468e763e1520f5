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

// This file defines the command that wraps synthesized speech into a
// playable WAV file. The TTS provider hands back bare PCM samples as a
// base64 string, so browsers cannot play them until a RIFF container with
// the right sample rate, channel count, and bit depth is written around
// them.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/audio"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
)

// NarrationBuilder is a command that converts a base64 PCM payload into WAV bytes.
type NarrationBuilder struct {
	cor.BaseCommand
	speechConfig *cloud.SpeechModel // Supplies the PCM format parameters for the container.
}

// NewNarrationBuilder is the constructor for the NarrationBuilder command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - speechConfig: The TTS model configuration that produced the payload.
//
// Outputs:
//   - *NarrationBuilder: A pointer to the newly instantiated command.
func NewNarrationBuilder(name string, speechConfig *cloud.SpeechModel) *NarrationBuilder {
	return &NarrationBuilder{BaseCommand: *cor.NewBaseCommand(name), speechConfig: speechConfig}
}

// Execute decodes the payload and writes the WAV container.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *NarrationBuilder) Execute(context cor.Context) {
	payload, ok := context.Get(t.GetInputParam()).(string)
	if !ok || len(payload) == 0 {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("no audio payload to package"))
		return
	}

	wav, err := audio.Transcode(payload, t.speechConfig.SampleRate, t.speechConfig.ChannelCount, t.speechConfig.BitsPerSample)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to package narration audio: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), wav)
}
