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

// This file defines the command that waits for a video generation job to
// finish. The provider models video synthesis as a long-running operation,
// so the command refreshes the operation handle at a fixed interval until
// it reports done. Every run is bounded by the configured timeout so a
// stuck provider job can never pin a worker forever, and the interval is
// fixed rather than unbounded so the poll loop cannot hammer the API.
package commands

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"google.golang.org/genai"
)

// VideoPoller is a command that blocks until a video operation completes,
// fails, or exceeds its time budget.
type VideoPoller struct {
	cor.BaseCommand
	genaiClient *genai.Client         // The generative AI client used to refresh the operation.
	policy      *cloud.VideoJobPolicy // The poll interval and timeout bounds.
}

// NewVideoPoller is the constructor for the VideoPoller command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - genaiClient: The generative AI client.
//   - policy: The poll interval and timeout configuration.
//
// Outputs:
//   - *VideoPoller: A pointer to the newly instantiated command.
func NewVideoPoller(name string, genaiClient *genai.Client, policy *cloud.VideoJobPolicy) *VideoPoller {
	return &VideoPoller{BaseCommand: *cor.NewBaseCommand(name), genaiClient: genaiClient, policy: policy}
}

// Execute polls the operation until done or out of time.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (t *VideoPoller) Execute(context cor.Context) {
	operation, ok := context.Get(t.GetInputParam()).(*genai.GenerateVideosOperation)
	if !ok || operation == nil {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("no video operation to poll"))
		return
	}

	interval := time.Duration(t.policy.PollIntervalInSeconds) * time.Second
	deadline := time.Now().Add(time.Duration(t.policy.TimeoutInSeconds) * time.Second)
	polls := 0

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !operation.Done {
		if time.Now().After(deadline) {
			t.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(t.GetName(), fmt.Errorf("video generation timed out after %ds", t.policy.TimeoutInSeconds))
			return
		}

		select {
		case <-context.GetContext().Done():
			t.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(t.GetName(), fmt.Errorf("video poll canceled: %w", context.GetContext().Err()))
			return
		case <-ticker.C:
		}

		refreshed, err := t.genaiClient.Operations.GetVideosOperation(context.GetContext(), operation, nil)
		if err != nil {
			t.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(t.GetName(), fmt.Errorf("failed to refresh video operation: %w", err))
			return
		}
		operation = refreshed
		polls++
	}

	if operation.Response == nil || len(operation.Response.GeneratedVideos) == 0 {
		t.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(t.GetName(), fmt.Errorf("video operation finished without any generated video"))
		return
	}

	trace.SpanFromContext(context.GetContext()).SetAttributes(attribute.Int("video.poll.count", polls))

	t.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(t.GetOutputParam(), operation.Response.GeneratedVideos[0].Video)
}
