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
// the tag suggestion workflows: single-entry suggestion, used when the user
// asks for tags on one entry, and the batch backfill that tags everything an
// import left untagged.
package workflow

import (
	"text/template"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/commands"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
)

// GetTagAnalysisParamName returns the context key where the tag suggestion
// workflow stores its final TagAnalysis.
func GetTagAnalysisParamName() string { return "__tag_analysis__" }

// TagSuggestionWorkflow analyzes a single journal entry and produces the
// suggested tags and mood for it. It is a small chain: flatten the entry to
// prompt text, ask the model for a structured analysis, and parse the reply.
type TagSuggestionWorkflow struct {
	cor.BaseCommand
	config      *cloud.Config
	genaiModel  *cloud.QuotaAwareGenerativeAIModel
	tagTemplate *template.Template
	chain       cor.Chain // The underlying chain of commands to be executed.
}

// Execute runs the tag suggestion workflow by invoking the underlying chain.
//
// Inputs:
//   - context: The chain of responsibility context for this execution. The
//     caller seeds the entries parameter with the single entry to analyze.
func (m *TagSuggestionWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// initializeChain builds the sequence of commands that make up this workflow.
func (m *TagSuggestionWorkflow) initializeChain() {
	out := cor.NewBaseChain(m.GetName())

	agent := m.config.AgentModels["journal-analyst"]

	// Step 1: Flatten the entry into the dated text block the prompt expects.
	out.AddCommand(commands.NewEntryDigest("digest-entry", agent.DigestCharLimit))

	// Step 2: Ask the model for tags and a mood, guided by a JSON example.
	out.AddCommand(commands.NewAnalysisCreator("generate-tag-analysis", m.config, m.genaiModel, m.tagTemplate, model.GetExampleTagAnalysis()))

	// Step 3: Parse the model's JSON reply into a TagAnalysis struct.
	out.AddCommand(commands.NewJsonToStruct[model.TagAnalysis]("convert-tag-analysis", GetTagAnalysisParamName()))

	m.chain = out
}

// NewTagSuggestionPipeline is the constructor for the TagSuggestionWorkflow.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for GCP services.
//   - agentModelName: The name of the agent model config to use.
//
// Returns:
//   - A pointer to a newly created and fully initialized TagSuggestionWorkflow.
func NewTagSuggestionPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *TagSuggestionWorkflow {

	tagTemplate, err := template.New("tag-template").Parse(config.PromptTemplates.Tags)
	if err != nil {
		panic(err) // The app cannot run without valid templates.
	}

	pipeline := &TagSuggestionWorkflow{
		BaseCommand: *cor.NewBaseCommand("tag-suggestion-pipeline"),
		config:      config,
		genaiModel:  serviceClients.AgentModels[agentModelName],
		tagTemplate: tagTemplate,
	}
	pipeline.initializeChain()
	return pipeline
}

// TagBackfillWorkflow tags every untagged entry in the journal with a worker
// pool, one model call per entry. It exists as its own workflow so imports
// of legacy journals can be tagged in one request.
type TagBackfillWorkflow struct {
	cor.BaseCommand
	chain cor.Chain
}

// Execute runs the backfill chain.
func (m *TagBackfillWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// NewTagBackfillPipeline is the constructor for the TagBackfillWorkflow.
//
// Inputs:
//   - config: The application's overall configuration.
//   - serviceClients: A struct containing initialized clients for GCP services.
//   - agentModelName: The name of the agent model config to use.
//
// Returns:
//   - A pointer to a newly created and fully initialized TagBackfillWorkflow.
func NewTagBackfillPipeline(
	config *cloud.Config,
	serviceClients *cloud.ServiceClients,
	agentModelName string) *TagBackfillWorkflow {

	tagTemplate, err := template.New("tag-template").Parse(config.PromptTemplates.Tags)
	if err != nil {
		panic(err)
	}

	out := cor.NewBaseChain("tag-backfill-chain")
	out.AddCommand(commands.NewTagBatchFiller(
		"fill-missing-tags",
		serviceClients.AgentModels[agentModelName],
		tagTemplate,
		config.Application.ThreadPoolSize))

	pipeline := &TagBackfillWorkflow{
		BaseCommand: *cor.NewBaseCommand("tag-backfill-pipeline"),
		chain:       out,
	}
	return pipeline
}
