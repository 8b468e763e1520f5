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
// Google Cloud services. This file contains general-purpose helpers for the
// package: hierarchical configuration loading and resilient text-analysis
// calls.
//
// Functions:
//   - fileExists: Checks whether a file exists.
//   - LoadConfig: Hierarchical configuration loader. Reads a base TOML file
//     and then overlays an environment-specific file (e.g. .env.local.toml,
//     .env.test.toml) selected by an environment variable.
//   - GenerateStructuredResponse: Wrapper for structured-output calls to a
//     text model, with retries, OpenTelemetry token counters, and removal of
//     the markdown fences the models like to wrap JSON in.
package cloud

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"go.opentelemetry.io/otel/metric"

	"github.com/BurntSushi/toml"
	"google.golang.org/genai"
)

// Configuration loading constants.
const (
	ConfigFileBaseName  = ".env"                    // Base name for configuration files.
	ConfigFileExtension = ".toml"                   // Extension for configuration files.
	ConfigSeparator     = "."                       // Separator in config file names (e.g. ".env.local.toml").
	EnvConfigFilePrefix = "JOURNAL_CONFIG_PREFIX"   // Env var naming the config directory.
	EnvConfigRuntime    = "JOURNAL_RUNTIME"         // Env var naming the runtime ("local", "test", "prod").
	MaxRetries          = 3                         // Max attempts for a failed model call.
)

// fileExists checks whether a file or directory exists at the given path.
func fileExists(in string) bool {
	_, err := os.Stat(in)
	return !errors.Is(err, os.ErrNotExist)
}

// LoadConfig provides hierarchical configuration loading: the base file is
// read first and the environment-specific file overwrites its values. The
// config directory and runtime name come from environment variables; the
// runtime defaults to "test" so unit tests need no setup beyond the files.
//
// Inputs:
//   - baseConfig: a pointer to the configuration struct to populate.
func LoadConfig(baseConfig interface{}) {
	configurationFilePrefix := os.Getenv(EnvConfigFilePrefix)
	if len(configurationFilePrefix) > 0 && !strings.HasSuffix(configurationFilePrefix, string(os.PathSeparator)) {
		configurationFilePrefix = configurationFilePrefix + string(os.PathSeparator)
	}

	runtimeEnvironment := os.Getenv(EnvConfigRuntime)
	if runtimeEnvironment == "" {
		runtimeEnvironment = "test"
	}

	baseConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigFileExtension
	envConfigFileName := configurationFilePrefix + ConfigFileBaseName + ConfigSeparator + runtimeEnvironment + ConfigFileExtension

	if fileExists(baseConfigFileName) {
		_, err := toml.DecodeFile(baseConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode base configuration file %s with error: %s", baseConfigFileName, err)
		}
	}

	// Values in the environment file overwrite the base values.
	if fileExists(envConfigFileName) {
		_, err := toml.DecodeFile(envConfigFileName, baseConfig)
		if err != nil {
			log.Fatalf("failed to decode environment configuration file: %s with error: %s", envConfigFileName, err)
		}
	}
}

// GenerateStructuredResponse executes a structured-output request against a
// text model. It retries transient failures, records token usage on the
// provided OpenTelemetry counters, and strips the ```json fences so the
// result is directly parsable.
//
// Inputs:
//   - ctx: the request context, carrying cancellation and tracing.
//   - inputTokenCounter: counter for prompt tokens used.
//   - outputTokenCounter: counter for response tokens generated.
//   - retryCounter: counter for retry attempts.
//   - tryCount: the current attempt number, 0 on the first call.
//   - model: the rate-limited text model wrapper.
//   - content: the prompt content.
//
// Outputs:
//   - string: the concatenated response text with JSON fences removed.
//   - error: an error if the request fails after all retries.
func GenerateStructuredResponse(
	ctx context.Context,
	inputTokenCounter metric.Int64Counter,
	outputTokenCounter metric.Int64Counter,
	retryCounter metric.Int64Counter,
	tryCount int,
	model *QuotaAwareGenerativeAIModel,
	content []*genai.Content) (value string, err error) {
	resp, err := model.GenerateContent(ctx, content)
	if err != nil {
		if tryCount < MaxRetries {
			retryCounter.Add(ctx, 1)
			return GenerateStructuredResponse(ctx, inputTokenCounter, outputTokenCounter, retryCounter, tryCount+1, model, content)
		}
		return "", err
	}

	if resp.UsageMetadata != nil {
		inputTokenCounter.Add(ctx, int64(resp.UsageMetadata.PromptTokenCount))
		outputTokenCounter.Add(ctx, int64(resp.UsageMetadata.CandidatesTokenCount))
	}

	value = ""
	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				value += part.Text
			}
		}
	}
	// An empty response from the analysis model is a hard error for the
	// caller; returning "" with a nil error would just move the failure to
	// the JSON decode with a worse message.
	if strings.TrimSpace(value) == "" {
		return "", errors.New("model returned an empty response")
	}
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "```json")
	value = strings.TrimSuffix(value, "```")
	return value, nil
}
