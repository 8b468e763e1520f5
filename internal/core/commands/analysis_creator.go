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

// This file defines the analysis creator, the single command behind every
// Gemini text analysis in the application. Tag suggestion, memory script
// writing, and cinema profile building all use the same shape of request:
// a prompt template is filled with the journal digest plus a well-formed
// JSON example (few-shot prompting), sent to a rate-limited model, and the
// raw JSON string response is handed to the next command for parsing.
//
// Logic Flow:
//  1. It receives the digest text produced by `EntryDigest` from the context.
//  2. It executes the Go prompt template, substituting the digest under the
//     ENTRIES key and a marshaled example struct under EXAMPLE_JSON.
//  3. It sends the prompt to the generative model through the shared helper,
//     which handles retries, token accounting, and markdown fence stripping.
//  4. It places the raw JSON string into the context for `JsonToStruct`.
package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"google.golang.org/genai"
)

// AnalysisCreator is a command that prompts a generative model with journal
// text and a JSON example, and emits the model's raw JSON response.
type AnalysisCreator struct {
	cor.BaseCommand
	config                   *cloud.Config                      // Application configuration, used for prompt templating.
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client.
	template                 *template.Template                 // The Go template for building the prompt.
	example                  interface{}                        // The few-shot example marshaled into the prompt.
	geminiInputTokenCounter  metric.Int64Counter                // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter                // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter                // OTel counter for retries.
}

// NewAnalysisCreator is the constructor for the AnalysisCreator command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - config: The application's configuration object.
//   - generativeAIModel: The rate-limited wrapper for the generative model client.
//   - template: A parsed Go template for the prompt.
//   - example: A struct marshaled to JSON and injected as the few-shot example.
//
// Outputs:
//   - *AnalysisCreator: A pointer to the newly instantiated command, including initialized telemetry counters.
func NewAnalysisCreator(
	name string,
	config *cloud.Config,
	generativeAIModel *cloud.QuotaAwareGenerativeAIModel,
	template *template.Template,
	example interface{}) *AnalysisCreator {

	out := &AnalysisCreator{
		BaseCommand:       *cor.NewBaseCommand(name),
		config:            config,
		generativeAIModel: generativeAIModel,
		template:          template,
		example:           example}

	// Initialize OpenTelemetry counters for monitoring Gemini API usage for this specific command.
	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.retry", out.GetName()))

	return out
}

// GenerateParams creates the map of dynamic data to be injected into the prompt template.
//
// Inputs:
//   - digest: The flattened journal text to analyze.
//
// Outputs:
//   - map[string]interface{}: A map of keys and values for template substitution.
func (t *AnalysisCreator) GenerateParams(digest string) map[string]interface{} {
	params := make(map[string]interface{})
	params["ENTRIES"] = digest

	// Provide a complete, well-formed JSON example in the prompt. This technique
	// (few-shot prompting) significantly improves the reliability and structure
	// of the model's output.
	exampleJSON, _ := json.Marshal(t.example)
	params["EXAMPLE_JSON"] = string(exampleJSON)
	return params
}

// Execute contains the core logic for prompting the generative model.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *AnalysisCreator) Execute(context cor.Context) {
	digest, ok := context.Get(t.GetInputParam()).(string)
	if !ok || len(digest) == 0 {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("no digest text to analyze"))
		return
	}

	// Use a buffer to execute the Go template, substituting the dynamic params.
	var buffer bytes.Buffer
	err := t.template.Execute(&buffer, t.GenerateParams(digest))
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("failed to execute prompt template: %w", err))
		return
	}

	contents := []*genai.Content{
		{Parts: []*genai.Part{
			{Text: buffer.String()},
		},
			Role: "user"},
	}

	// Call the helper function to send the request to the model. The helper
	// encapsulates retry logic and telemetry updates.
	out, err := cloud.GenerateStructuredResponse(context.GetContext(), t.geminiInputTokenCounter, t.geminiOutputTokenCounter, t.geminiRetryCounter, 0, t.generativeAIModel, contents)
	if err != nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("gemini request failed: %w", err))
		return
	}

	// On success, update the success counter and place the raw JSON string
	// response into the context for the next command.
	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), out)
}
