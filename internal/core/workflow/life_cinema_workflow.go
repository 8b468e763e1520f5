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
// the life cinema workflow. Where the memory video dramatizes the recent
// past, life cinema reads the whole journal and produces a biographical
// trailer: a character profile with an archetype and traits, a sung personal
// anthem, and a cinematic video.
package workflow

import (
	"fmt"
	"net/http"
	"strings"
	"text/template"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/commands"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
)

// LifeCinemaWorkflow orchestrates the biographical generation. Its chain has
// the same shape as the memory video chain; only the prompt, the parsed
// struct, and the voice treatment differ.
type LifeCinemaWorkflow struct {
	cor.BaseCommand
	config          *cloud.Config
	serviceClients  *cloud.ServiceClients
	genaiModel      *cloud.QuotaAwareGenerativeAIModel
	profileTemplate *template.Template
	speechConfig    cloud.SpeechModel
	videoConfig     cloud.VideoModel
	jobPolicy       cloud.VideoJobPolicy
	chain           cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the entire life cinema workflow by invoking the underlying
// chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution. The
//     caller seeds the job id and the full journal.
func (m *LifeCinemaWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this workflow.
func (m *LifeCinemaWorkflow) initializeChain() {
	agent := m.config.AgentModels["journal-analyst"]

	out := cor.NewBaseChain(m.GetName())

	// Step 1: Flatten the whole journal, oldest first, into one capped block.
	out.AddCommand(commands.NewEntryDigest("digest-journal", agent.DigestCharLimit))

	// Step 2: Ask the model for the cinema profile: archetype, traits,
	// musical style, anthem lyrics, and a visual prompt.
	out.AddCommand(commands.NewAnalysisCreator("generate-cinema-profile", m.config, m.genaiModel, m.profileTemplate, model.GetExampleCinemaProfile()))

	// Step 3: Parse the JSON reply; later steps read individual fields.
	out.AddCommand(commands.NewJsonToStruct[model.CinemaProfile]("convert-cinema-profile", GetScriptParamName()))

	// Step 4: Perform the anthem. The lyrics are prefixed with the musical
	// style as a performance direction for the TTS model.
	speech := commands.NewSpeechSynthesizer("synthesize-anthem", m.serviceClients.GenAIClient, &m.speechConfig, cinemaProfileLyrics)
	speech.InputParamName = GetScriptParamName()
	out.AddCommand(speech)

	// Step 5: Wrap the raw PCM samples into a playable WAV container.
	out.AddCommand(commands.NewNarrationBuilder("build-anthem-wav", &m.speechConfig))

	// Step 6: Persist the anthem to the media bucket under the job's prefix.
	out.AddCommand(commands.NewArtifactUpload(
		"upload-anthem",
		m.serviceClients.StorageClient,
		m.config.Storage.MediaBucket,
		"audio/wav",
		cloud.AnthemObjectName,
		commands.GetAnthemObjectParamName()))

	// Step 7: Pick the newest entry photo, if any, to anchor the video.
	out.AddCommand(commands.NewReferenceImageExtractor("extract-reference-image"))

	// Step 8: Submit the cinematic video request.
	submit := commands.NewVideoSubmitter("submit-cinema-video", m.serviceClients.GenAIClient, &m.videoConfig, cinemaProfilePrompt)
	submit.InputParamName = GetScriptParamName()
	out.AddCommand(submit)

	// Step 9: Wait for the long-running operation, bounded by the job policy.
	out.AddCommand(commands.NewVideoPoller("poll-cinema-video", m.serviceClients.GenAIClient, &m.jobPolicy))

	// Step 10: Materialize the finished video into a local temp file.
	out.AddCommand(commands.NewVideoToTempFile("fetch-cinema-video", http.DefaultClient, m.config.Application.APIKey, "life-cinema-"))

	// Step 11: Persist the video next to its anthem in the media bucket.
	out.AddCommand(commands.NewArtifactUpload(
		"upload-cinema-video",
		m.serviceClients.StorageClient,
		m.config.Storage.MediaBucket,
		"video/mp4",
		cloud.VideoObjectName,
		commands.GetMediaObjectParamName()))

	m.chain = out
}

// cinemaProfileLyrics extracts the performable anthem text from a parsed
// cinema profile.
func cinemaProfileLyrics(v interface{}) (string, error) {
	profile, ok := v.(*model.CinemaProfile)
	if !ok || profile == nil || profile.Lyrics == "" {
		return "", fmt.Errorf("cinema profile is missing anthem lyrics")
	}
	if profile.MusicalStyle == "" {
		return profile.Lyrics, nil
	}
	var builder strings.Builder
	fmt.Fprintf(&builder, "Perform the following lyrics in this style: %s.\n\n", profile.MusicalStyle)
	builder.WriteString(profile.Lyrics)
	return builder.String(), nil
}

// cinemaProfilePrompt extracts the visual prompt from a parsed cinema profile.
func cinemaProfilePrompt(v interface{}) (string, error) {
	profile, ok := v.(*model.CinemaProfile)
	if !ok || profile == nil || profile.VisualPrompt == "" {
		return "", fmt.Errorf("cinema profile is missing a visual prompt")
	}
	return profile.VisualPrompt, nil
}

// NewLifeCinemaPipeline is the constructor for the LifeCinemaWorkflow.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for GCP services.
//   - agentModelName: The name of the agent model config to use.
//
// Returns:
//   - A pointer to a newly created and fully initialized LifeCinemaWorkflow.
func NewLifeCinemaPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *LifeCinemaWorkflow {

	profileTemplate, err := template.New("cinema-profile-template").Parse(config.PromptTemplates.CinemaProfile)
	if err != nil {
		panic(err) // The app cannot run without valid templates.
	}

	pipeline := &LifeCinemaWorkflow{
		BaseCommand:     *cor.NewBaseCommand("life-cinema-pipeline"),
		config:          config,
		serviceClients:  serviceClients,
		genaiModel:      serviceClients.AgentModels[agentModelName],
		profileTemplate: profileTemplate,
		speechConfig:    config.SpeechModels["vocalist"],
		videoConfig:     config.VideoModels["life-cinema"],
		jobPolicy:       config.VideoJobs[string(model.KindCinema)],
	}
	pipeline.initializeChain()
	return pipeline
}
