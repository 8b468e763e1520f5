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
// Google Cloud services. This file wraps the generative model handle with a
// rate limiter (Decorator pattern): the Gemini API enforces per-minute
// quotas, and a batch tag fill over a large journal would blow straight
// through them without a limiter in front.
//
// Structs:
//   - QuotaAwareGenerativeAIModel: pairs a model name and generation config
//     with a rate.Limiter.
//
// Functions:
//   - NewQuotaAwareModel: Constructor for the wrapper.
//   - GenerateContent: Rate-limited, retrying call to the model.
package cloud

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// quotaRetryLimit is the number of additional attempts GenerateContent makes
// after the first failure before giving up.
const quotaRetryLimit = 3

// QuotaAwareGenerativeAIModel decorates a generative model handle with rate
// limiting. All text-analysis traffic goes through this wrapper.
type QuotaAwareGenerativeAIModel struct {
	GenerateConfig *genai.GenerateContentConfig // Generation settings applied to every call.
	ModelName      string                       // The model to invoke.
	ModelHandle    *genai.Models                // The underlying SDK model collection.
	RateLimit      *rate.Limiter                // Token bucket guarding request frequency.
}

// NewQuotaAwareModel creates a rate-limited model wrapper.
//
// Inputs:
//   - config: the generation settings to apply on every call.
//   - name: the model name.
//   - handle: the SDK model collection from the client.
//   - requestsPerSecond: the sustained request rate allowed.
//
// Outputs:
//   - *QuotaAwareGenerativeAIModel: the wrapper.
func NewQuotaAwareModel(config *genai.GenerateContentConfig, name string, handle *genai.Models, requestsPerSecond int) *QuotaAwareGenerativeAIModel {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareGenerativeAIModel{
		GenerateConfig: config,
		ModelName:      name,
		ModelHandle:    handle,
		RateLimit:      rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

// GenerateContent calls the model after acquiring a rate-limiter token,
// retrying failed calls with a short pause between attempts. The limiter's
// Wait blocks until a token is available or the context is canceled, which
// is what queues concurrent batch work behind the quota.
//
// Inputs:
//   - ctx: the request context.
//   - content: the prompt content.
//
// Outputs:
//   - *genai.GenerateContentResponse: the model response.
//   - error: the last error after all attempts fail, or a context error.
func (q *QuotaAwareGenerativeAIModel) GenerateContent(ctx context.Context, content []*genai.Content) (resp *genai.GenerateContentResponse, err error) {
	for attempt := 0; ; attempt++ {
		if err := q.RateLimit.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err = q.ModelHandle.GenerateContent(ctx, q.ModelName, content, q.GenerateConfig)
		if err == nil {
			return resp, nil
		}
		if attempt >= quotaRetryLimit {
			return nil, fmt.Errorf("generation failed after %d attempts: %w", attempt+1, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}
