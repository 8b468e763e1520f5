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
// the memory video workflow, the longest pipeline in the application: it
// reads the recent journal, writes a narrated script, synthesizes the
// narration, generates a short video, and lands both artifacts in the media
// bucket.
package workflow

import (
	"fmt"
	"net/http"
	"text/template"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/commands"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
)

// GetScriptParamName returns the context key where the generation workflows
// store the parsed analysis struct. Both the speech and video submit steps
// read from it, which is why it lives outside the default chain piping.
func GetScriptParamName() string { return "__script__" }

// MemoryVideoWorkflow orchestrates the entire memory video generation: from
// journal entries to a narrated WAV and a generated MP4 in cloud storage.
//
// This workflow runs asynchronously under a video job; the HTTP layer
// returns a job id immediately and the job registry records the artifact
// locations when the chain finishes.
type MemoryVideoWorkflow struct {
	cor.BaseCommand
	config         *cloud.Config
	serviceClients *cloud.ServiceClients
	genaiModel     *cloud.QuotaAwareGenerativeAIModel
	scriptTemplate *template.Template
	speechConfig   cloud.SpeechModel
	videoConfig    cloud.VideoModel
	jobPolicy      cloud.VideoJobPolicy
	chain          cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the entire memory video workflow by invoking the underlying
// chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution. The
//     caller seeds the job id and the journal entries to dramatize.
func (m *MemoryVideoWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this workflow.
// Each command is an atomic unit of work; the output of one command usually
// serves as the input of the next.
func (m *MemoryVideoWorkflow) initializeChain() {
	agent := m.config.AgentModels["journal-analyst"]

	out := cor.NewBaseChain(m.GetName())

	// Step 1: Flatten the recent entries into one capped text block.
	out.AddCommand(commands.NewEntryDigest("digest-entries", agent.DigestCharLimit))

	// Step 2: Ask the model to write the memory script: a narration text, a
	// mood, and a visual prompt for the video model.
	out.AddCommand(commands.NewAnalysisCreator("generate-memory-script", m.config, m.genaiModel, m.scriptTemplate, model.GetExampleMemoryScript()))

	// Step 3: Parse the JSON reply. The struct is stored under the script
	// key because two later steps need different fields of it.
	out.AddCommand(commands.NewJsonToStruct[model.MemoryScript]("convert-memory-script", GetScriptParamName()))

	// Step 4: Speak the narration. The synthesizer reads the script struct
	// directly rather than the chain's piped value.
	speech := commands.NewSpeechSynthesizer("synthesize-narration", m.serviceClients.GenAIClient, &m.speechConfig, memoryScriptText)
	speech.InputParamName = GetScriptParamName()
	out.AddCommand(speech)

	// Step 5: Wrap the raw PCM samples into a playable WAV container.
	out.AddCommand(commands.NewNarrationBuilder("build-narration-wav", &m.speechConfig))

	// Step 6: Persist the narration to the media bucket under the job's prefix.
	out.AddCommand(commands.NewArtifactUpload(
		"upload-narration",
		m.serviceClients.StorageClient,
		m.config.Storage.MediaBucket,
		"audio/wav",
		cloud.AnthemObjectName,
		commands.GetAnthemObjectParamName()))

	// Step 7: Pick the newest entry photo, if any, to anchor the video.
	out.AddCommand(commands.NewReferenceImageExtractor("extract-reference-image"))

	// Step 8: Submit the video generation request using the script's visual
	// prompt and the optional reference image.
	submit := commands.NewVideoSubmitter("submit-video", m.serviceClients.GenAIClient, &m.videoConfig, memoryScriptPrompt)
	submit.InputParamName = GetScriptParamName()
	out.AddCommand(submit)

	// Step 9: Wait for the long-running operation, bounded by the job policy.
	out.AddCommand(commands.NewVideoPoller("poll-video", m.serviceClients.GenAIClient, &m.jobPolicy))

	// Step 10: Materialize the finished video into a local temp file.
	out.AddCommand(commands.NewVideoToTempFile("fetch-video", http.DefaultClient, m.config.Application.APIKey, "memory-video-"))

	// Step 11: Persist the video next to its narration in the media bucket.
	out.AddCommand(commands.NewArtifactUpload(
		"upload-video",
		m.serviceClients.StorageClient,
		m.config.Storage.MediaBucket,
		"video/mp4",
		cloud.VideoObjectName,
		commands.GetMediaObjectParamName()))

	m.chain = out
}

// memoryScriptText extracts the narration text from a parsed memory script.
func memoryScriptText(v interface{}) (string, error) {
	script, ok := v.(*model.MemoryScript)
	if !ok || script == nil || script.Script == "" {
		return "", fmt.Errorf("memory script is missing narration text")
	}
	return script.Script, nil
}

// memoryScriptPrompt extracts the visual prompt from a parsed memory script.
func memoryScriptPrompt(v interface{}) (string, error) {
	script, ok := v.(*model.MemoryScript)
	if !ok || script == nil || script.VisualPrompt == "" {
		return "", fmt.Errorf("memory script is missing a visual prompt")
	}
	return script.VisualPrompt, nil
}

// NewMemoryVideoPipeline is the constructor for the MemoryVideoWorkflow. It
// resolves the model configurations, compiles the prompt template, and
// initializes the command chain.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for GCP services.
//   - agentModelName: The name of the agent model config to use.
//
// Returns:
//   - A pointer to a newly created and fully initialized MemoryVideoWorkflow.
func NewMemoryVideoPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *MemoryVideoWorkflow {

	scriptTemplate, err := template.New("memory-script-template").Parse(config.PromptTemplates.MemoryScript)
	if err != nil {
		panic(err) // The app cannot run without valid templates.
	}

	pipeline := &MemoryVideoWorkflow{
		BaseCommand:    *cor.NewBaseCommand("memory-video-pipeline"),
		config:         config,
		serviceClients: serviceClients,
		genaiModel:     serviceClients.AgentModels[agentModelName],
		scriptTemplate: scriptTemplate,
		speechConfig:   config.SpeechModels["narrator"],
		videoConfig:    config.VideoModels["memory-video"],
		jobPolicy:      config.VideoJobs[string(model.KindMemory)],
	}
	pipeline.initializeChain()
	return pipeline
}
