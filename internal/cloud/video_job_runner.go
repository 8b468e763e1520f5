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

// Package cloud provides components for interacting with the Gemini and
// Google Cloud services. This file runs generation workflows for video jobs.
// A job outlives the API request that submitted it, so the runner is a core
// "cloud" component with its own lifecycle rather than request plumbing: the
// job registry launches a runner on a goroutine and the client polls the
// job's state.
package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// VideoJobRunner executes one workflow chain per invocation, giving each run
// a fresh chain context and a tracing span.
type VideoJobRunner struct {
	command cor.Command // The workflow chain to execute for each job.
}

// NewVideoJobRunner creates a runner for the given workflow chain.
//
// Inputs:
//   - command: the workflow chain; may be nil and attached later with
//     SetCommand while the chains are still being assembled.
//
// Outputs:
//   - *VideoJobRunner: the runner.
func NewVideoJobRunner(command cor.Command) *VideoJobRunner {
	return &VideoJobRunner{command: command}
}

// SetCommand attaches the workflow chain if one is not already set. The
// guard keeps a fully assembled chain from being overwritten.
func (r *VideoJobRunner) SetCommand(command cor.Command) {
	if r.command == nil {
		r.command = command
	}
}

// Run executes the workflow chain for one job. It seeds a fresh chain
// context, executes the chain under a span named after the job, and returns
// the finished context so the caller can read the produced artifacts.
//
// Inputs:
//   - ctx: the context governing the run; canceling it aborts the job.
//   - jobID: the job identifier, used for the span.
//   - seed: initial key-value pairs for the chain context (the selected
//     entries, the job ID, and so on).
//
// Outputs:
//   - cor.Context: the finished chain context.
//   - error: the first recorded workflow error, or nil on success.
func (r *VideoJobRunner) Run(ctx context.Context, jobID string, seed map[string]interface{}) (cor.Context, error) {
	if r.command == nil {
		return nil, errors.New("video job runner has no workflow attached")
	}

	tracer := otel.Tracer(r.command.GetName())
	runCtx, span := tracer.Start(ctx, fmt.Sprintf("%s_job", r.command.GetName()))
	span.SetAttributes(attribute.String("job.id", jobID))
	defer span.End()

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(runCtx)
	defer chainCtx.Close()
	for k, v := range seed {
		chainCtx.Add(k, v)
	}

	r.command.Execute(chainCtx)

	if chainCtx.HasErrors() {
		span.SetStatus(codes.Error, "job workflow failed")
		// Jobs surface a single cause; the chain stops at the first failed
		// command, so the map holds exactly one entry in practice.
		for name, err := range chainCtx.GetErrors() {
			return chainCtx, fmt.Errorf("%s: %w", name, err)
		}
	}
	span.SetStatus(codes.Ok, "job workflow completed")
	return chainCtx, nil
}
