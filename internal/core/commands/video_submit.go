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

// This file defines the command that starts a video generation job. Video
// synthesis is a long-running operation on the provider side, so this
// command only submits the request; `VideoPoller` waits for completion.
//
// The visual prompt written by the analysis model tends to run long, and
// the video API rejects oversized prompts, so the prompt is truncated to
// the configured limit before submission. When the reference image command
// found a photo, it is attached to ground the generated footage.
package commands

import (
	"fmt"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"google.golang.org/genai"
)

// VideoSubmitter is a command that submits a video generation request and
// emits the long-running operation handle.
type VideoSubmitter struct {
	cor.BaseCommand
	genaiClient *genai.Client                     // The generative AI client used for the video call.
	videoConfig *cloud.VideoModel                 // The video model name, aspect ratio, and prompt limit.
	promptFn    func(interface{}) (string, error) // Extracts the visual prompt from the input value.
}

// NewVideoSubmitter is the constructor for the VideoSubmitter command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - genaiClient: The generative AI client.
//   - videoConfig: The video model configuration.
//   - promptFn: A function that pulls the visual prompt out of the input value.
//
// Outputs:
//   - *VideoSubmitter: A pointer to the newly instantiated command.
func NewVideoSubmitter(
	name string,
	genaiClient *genai.Client,
	videoConfig *cloud.VideoModel,
	promptFn func(interface{}) (string, error)) *VideoSubmitter {
	return &VideoSubmitter{
		BaseCommand: *cor.NewBaseCommand(name),
		genaiClient: genaiClient,
		videoConfig: videoConfig,
		promptFn:    promptFn}
}

// Execute truncates the prompt, attaches the optional reference image, and
// submits the generation request.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *VideoSubmitter) Execute(context cor.Context) {
	prompt, err := t.promptFn(context.Get(t.GetInputParam()))
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("no visual prompt available: %w", err))
		return
	}

	// The provider enforces a hard prompt size. Truncate on rune boundaries
	// so multi-byte text is never split mid-character.
	if limit := t.videoConfig.PromptCharLimit; limit > 0 {
		if runes := []rune(prompt); len(runes) > limit {
			prompt = string(runes[:limit])
		}
	}

	// The reference image is optional. A nil image means text-only generation.
	var image *genai.Image
	if v := context.Get(GetReferenceImageParamName()); v != nil {
		image, _ = v.(*genai.Image)
	}

	config := &genai.GenerateVideosConfig{
		AspectRatio: t.videoConfig.AspectRatio,
	}

	operation, err := t.genaiClient.Models.GenerateVideos(context.GetContext(), t.videoConfig.Model, prompt, image, config)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("video generation request failed: %w", err))
		return
	}

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), operation)
}
