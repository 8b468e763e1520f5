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

// This file defines a command that fills in missing tags across a whole
// journal. Imported legacy documents usually arrive with no tags or moods
// at all, and tagging entries one request at a time would make a large
// import crawl.
//
// Logic Flow:
//  1. It receives the full entry list from the context and filters it down
//     to the entries that have no tags yet.
//  2. **Worker Pool Pattern**: It creates a `jobs` channel and a `results`
//     channel and launches a configurable number of `tagWorker` goroutines.
//  3. Each untagged entry becomes a `TagJob` carrying its own rendered
//     prompt and an OTel span. Workers pull jobs, call Gemini, and parse
//     the response into a `model.TagAnalysis`.
//  4. The `Execute` function waits on a `sync.WaitGroup`, then applies each
//     analysis back onto its entry and reports how many entries changed.
//     A failed entry is recorded as a context error but does not stop the
//     rest of the batch.
package commands

import (
	"bytes"
	goctx "context"
	"encoding/json"
	"fmt"
	"sync"
	"text/template"

	"go.opentelemetry.io/otel/metric"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

// TagBatchFiller is a command that tags untagged journal entries in parallel.
type TagBatchFiller struct {
	cor.BaseCommand
	generativeAIModel        *cloud.QuotaAwareGenerativeAIModel // The rate-limited generative model client.
	promptTemplate           *template.Template                 // The Go template for the per-entry tag prompt.
	numberOfWorkers          int                                // The number of concurrent workers to spawn.
	geminiInputTokenCounter  metric.Int64Counter                // OTel counter for input tokens.
	geminiOutputTokenCounter metric.Int64Counter                // OTel counter for output tokens.
	geminiRetryCounter       metric.Int64Counter                // OTel counter for retries.
}

// NewTagBatchFiller is the constructor for the TagBatchFiller command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - model: The client for the generative AI model.
//   - prompt: The parsed Go template for the per-entry prompt.
//   - numberOfWorkers: The size of the worker pool for concurrent processing.
//
// Outputs:
//   - *TagBatchFiller: A pointer to the newly instantiated command.
func NewTagBatchFiller(
	name string,
	model *cloud.QuotaAwareGenerativeAIModel,
	prompt *template.Template,
	numberOfWorkers int) *TagBatchFiller {
	out := &TagBatchFiller{
		BaseCommand:       *cor.NewBaseCommand(name),
		generativeAIModel: model,
		promptTemplate:    prompt,
		numberOfWorkers:   numberOfWorkers}
	out.InputParamName = GetEntriesParamName()

	// Initialize OpenTelemetry metrics specific to this command.
	out.geminiInputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.input", out.GetName()))
	out.geminiOutputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.token.output", out.GetName()))
	out.geminiRetryCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.gemini.retry", out.GetName()))

	return out
}

// IsExecutable checks that the entry list is present in the context.
func (s *TagBatchFiller) IsExecutable(context cor.Context) bool {
	return context != nil && context.Get(s.GetInputParam()) != nil
}

// Execute orchestrates the parallel tagging of untagged entries.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *TagBatchFiller) Execute(context cor.Context) {
	entries, ok := context.Get(s.GetInputParam()).([]*model.Entry)
	if !ok {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("expected journal entries in context parameter %q", s.GetInputParam()))
		return
	}

	// Only entries without tags need a model call.
	pending := make([]*model.Entry, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Tags) == 0 {
			pending = append(pending, entry)
		}
	}
	if len(pending) == 0 {
		s.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(s.GetOutputParam(), entries)
		context.Add(cor.CtxOut, entries)
		return
	}

	exampleJson, _ := json.Marshal(model.GetExampleTagAnalysis())
	exampleText := string(exampleJson)

	// --- Setup for Concurrent Processing ---
	var wg sync.WaitGroup

	// Buffer both channels to the batch size so senders never block.
	jobs := make(chan *TagJob, len(pending))
	results := make(chan *TagResponse, len(pending))

	// --- Launch Worker Goroutines ---
	for w := 1; w <= s.numberOfWorkers; w++ {
		wg.Add(1)
		go tagWorker(jobs, results, &wg)
	}

	// --- Distribute Jobs to Workers ---
	for i, entry := range pending {
		job := createTagJob(context.GetContext(), s.Tracer, s.geminiInputTokenCounter, s.geminiOutputTokenCounter, s.geminiRetryCounter, i, s.GetName(), exampleText, *s.promptTemplate, s.generativeAIModel, entry)
		jobs <- job
	}

	// Closing the jobs channel signals the workers that no more work is coming.
	close(jobs)

	// Block until every worker calls `wg.Done()`.
	wg.Wait()
	close(results)

	// --- Apply Results ---
	updated := 0
	for r := range results {
		if r.err != nil {
			s.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(s.GetName(), r.err)
			continue
		}
		r.entry.Tags = r.analysis.Tags
		if r.entry.Mood == "" {
			r.entry.Mood = r.analysis.Mood
		}
		updated++
	}

	if !context.HasErrors() {
		s.GetSuccessCounter().Add(context.GetContext(), 1)
	}

	// Hand the full entry list forward so the caller can persist it.
	context.Add(s.GetOutputParam(), entries)
	context.Add(GetUpdatedCountParamName(), updated)
	context.Add(cor.CtxOut, entries)
}

// TagResponse carries one entry's analysis or error back from a worker.
type TagResponse struct {
	entry    *model.Entry
	analysis *model.TagAnalysis
	err      error
}

// TagJob encapsulates all the data needed for a single worker to tag one entry.
type TagJob struct {
	workerId                 int
	ctx                      goctx.Context
	geminiInputTokenCounter  metric.Int64Counter
	geminiOutputTokenCounter metric.Int64Counter
	geminiRetryCounter       metric.Int64Counter
	entry                    *model.Entry
	span                     trace.Span
	contents                 []*genai.Content
	model                    *cloud.QuotaAwareGenerativeAIModel
	err                      error
}

// Close ends the OpenTelemetry span associated with this job.
func (s *TagJob) Close(status codes.Code, description string) {
	s.span.SetStatus(status, description)
	s.span.End()
}

// createTagJob is a helper function to construct a TagJob.
func createTagJob(
	ctx goctx.Context,
	tracer trace.Tracer,
	geminiInputTokenCounter metric.Int64Counter,
	geminiOutputTokenCounter metric.Int64Counter,
	geminiRetryCounter metric.Int64Counter,
	workerId int,
	commandName string,
	exampleText string,
	template template.Template,
	model *cloud.QuotaAwareGenerativeAIModel,
	entry *model.Entry,
) *TagJob {
	// Start a new OTel span for this specific tagging task.
	tagCtx, tagSpan := tracer.Start(ctx, fmt.Sprintf("%s_genai_tag_%d", commandName, workerId))
	tagSpan.SetAttributes(
		attribute.Int("sequence", workerId),
		attribute.String("entry.id", entry.Id),
	)

	vocabulary := make(map[string]interface{})
	vocabulary["ENTRIES"] = fmt.Sprintf("## %s\n%s", entry.Date, entry.Content)
	vocabulary["EXAMPLE_JSON"] = exampleText

	var doc bytes.Buffer
	err := template.Execute(&doc, vocabulary)
	if err != nil {
		return &TagJob{entry: entry, err: err}
	}

	contents := []*genai.Content{
		{Parts: []*genai.Part{
			{Text: doc.String()},
		},
			Role: "user"},
	}

	return &TagJob{
		workerId:                 workerId,
		ctx:                      tagCtx,
		geminiInputTokenCounter:  geminiInputTokenCounter,
		geminiOutputTokenCounter: geminiOutputTokenCounter,
		geminiRetryCounter:       geminiRetryCounter,
		entry:                    entry,
		span:                     tagSpan,
		contents:                 contents,
		model:                    model,
	}
}

// tagWorker is the function that each concurrent goroutine runs. It receives
// jobs from the `jobs` channel and sends results to the `results` channel.
func tagWorker(jobs <-chan *TagJob, results chan<- *TagResponse, wg *sync.WaitGroup) {
	defer wg.Done()

	for j := range jobs {
		if j.err != nil {
			results <- &TagResponse{entry: j.entry, err: j.err}
			continue
		}

		out, err := cloud.GenerateStructuredResponse(j.ctx, j.geminiInputTokenCounter, j.geminiOutputTokenCounter, j.geminiRetryCounter, 0, j.model, j.contents)
		if err != nil {
			j.Close(codes.Error, "tag analysis failed")
			results <- &TagResponse{entry: j.entry, err: fmt.Errorf("tag analysis for entry %s failed: %w", j.entry.Id, err)}
			continue
		}

		analysis := &model.TagAnalysis{}
		if err := json.Unmarshal([]byte(out), analysis); err != nil {
			j.Close(codes.Error, "tag analysis parse failed")
			results <- &TagResponse{entry: j.entry, err: fmt.Errorf("failed to parse tag analysis for entry %s: %w", j.entry.Id, err)}
			continue
		}

		results <- &TagResponse{entry: j.entry, analysis: analysis}
		j.Close(codes.Ok, "entry tagged")
	}
}
