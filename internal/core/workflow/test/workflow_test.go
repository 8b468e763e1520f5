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

package workflow_test

import (
	"context"
	"testing"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig builds a configuration with every section the pipelines
// resolve at construction time, without reading the TOML files.
func newTestConfig() *cloud.Config {
	config := cloud.NewConfig()
	config.PromptTemplates.Tags = "Analyze: {{.ENTRIES}} as {{.EXAMPLE_JSON}}"
	config.PromptTemplates.MemoryScript = "Script: {{.ENTRIES}} as {{.EXAMPLE_JSON}}"
	config.PromptTemplates.CinemaProfile = "Profile: {{.ENTRIES}} as {{.EXAMPLE_JSON}}"
	config.AgentModels["journal-analyst"] = cloud.AgentModel{
		Model:           "test-model",
		RateLimit:       1,
		DigestCharLimit: 1000,
	}
	config.SpeechModels["narrator"] = cloud.SpeechModel{
		Voice: "Kore", SampleRate: 24000, ChannelCount: 1, BitsPerSample: 16,
	}
	config.SpeechModels["vocalist"] = cloud.SpeechModel{
		Voice: "Puck", SampleRate: 24000, ChannelCount: 1, BitsPerSample: 16,
	}
	config.VideoModels["memory-video"] = cloud.VideoModel{
		Model: "test-video-model", AspectRatio: "16:9", PromptCharLimit: 400,
	}
	config.VideoModels["life-cinema"] = cloud.VideoModel{
		Model: "test-video-model", AspectRatio: "16:9", PromptCharLimit: 400,
	}
	config.VideoJobs[string(model.KindMemory)] = cloud.VideoJobPolicy{
		PollIntervalInSeconds: 1, TimeoutInSeconds: 10,
	}
	config.VideoJobs[string(model.KindCinema)] = cloud.VideoJobPolicy{
		PollIntervalInSeconds: 1, TimeoutInSeconds: 10,
	}
	return config
}

// newTestClients returns a client container with only the model map
// populated. Construction never dials a service, so nil clients are fine
// for assembly tests.
func newTestClients() *cloud.ServiceClients {
	return &cloud.ServiceClients{
		AgentModels: map[string]*cloud.QuotaAwareGenerativeAIModel{
			"journal-analyst": {ModelName: "test-model"},
		},
	}
}

// TestPipelinesAssemble verifies that every pipeline builds its chain from
// the configuration without panicking on the prompt templates.
func TestPipelinesAssemble(t *testing.T) {
	config := newTestConfig()
	clients := newTestClients()

	assert.NotNil(t, workflow.NewTagSuggestionPipeline(config, clients, "journal-analyst"))
	assert.NotNil(t, workflow.NewTagBackfillPipeline(config, clients, "journal-analyst"))
	assert.NotNil(t, workflow.NewMemoryVideoPipeline(config, clients, "journal-analyst"))
	assert.NotNil(t, workflow.NewLifeCinemaPipeline(config, clients, "journal-analyst"))
	assert.NotNil(t, workflow.NewSpeechPipeline(config, clients))
}

// TestTagTemplateRejectsBadSyntax verifies that a broken prompt template
// fails fast at startup rather than on the first request.
func TestTagTemplateRejectsBadSyntax(t *testing.T) {
	config := newTestConfig()
	config.PromptTemplates.Tags = "{{.Unclosed"

	assert.Panics(t, func() {
		workflow.NewTagSuggestionPipeline(config, newTestClients(), "journal-analyst")
	})
}

// TestSpeechSynthesizeRequiresText verifies the synchronous speech entry
// point rejects empty input before any model call.
func TestSpeechSynthesizeRequiresText(t *testing.T) {
	speech := workflow.NewSpeechPipeline(newTestConfig(), newTestClients())

	_, err := speech.Synthesize(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text to speak")
}
