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
// Google Cloud services. This file initializes and holds the client objects
// the application talks through: a single shared ServiceClients struct acts
// as the dependency injection container.
//
// Logic Flow:
//  1. NewCloudServiceClients is called at startup with the loaded Config.
//  2. It creates the Storage, GenAI, and IAM credentials clients.
//  3. It builds a rate-limited wrapper for every configured agent model.
//  4. The bundle is passed to the services and workflows that need it.
//
// The GenAI client authenticates with the API key from configuration rather
// than ambient environment lookup, so the one credential the application
// holds is visible in exactly one place.
package cloud

import (
	"context"
	"fmt"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/storage"
	"google.golang.org/genai"
)

// ServiceClients is the central container for all external service clients
// and configured model wrappers.
type ServiceClients struct {
	StorageClient *storage.Client                         // Client for Google Cloud Storage (generated media).
	GenAIClient   *genai.Client                           // Client for the Gemini model family.
	IAMClient     *credentials.IamCredentialsClient       // Client for IAM, used to sign streaming URLs.
	AgentModels   map[string]*QuotaAwareGenerativeAIModel // Rate-limited text-analysis models, keyed by logical name.
}

// Close releases the client connections. The GenAI client has no close
// function in the current SDK; its connections follow the root context.
func (c *ServiceClients) Close() {
	_ = c.StorageClient.Close()
	if c.IAMClient != nil {
		_ = c.IAMClient.Close()
	}
}

// NewCloudServiceClients initializes every external client the application
// needs, based on the provided configuration.
//
// Inputs:
//   - ctx: the root application context, governing client lifecycles.
//   - config: the loaded application configuration.
//
// Outputs:
//   - *ServiceClients: the fully initialized container.
//   - error: an error if any client fails to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.Application.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	iamClient, err := credentials.NewIamCredentialsClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create iam credentials client: %w", err)
	}

	// Build a rate-limited wrapper for each configured text-analysis model.
	agentModels := make(map[string]*QuotaAwareGenerativeAIModel)
	for amKey, values := range config.AgentModels {
		generateConfig := &genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](values.Temperature),
			TopP:              genai.Ptr[float32](values.TopP),
			TopK:              genai.Ptr[float32](values.TopK),
			MaxOutputTokens:   values.MaxTokens,
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: values.SystemInstructions}}},
			SafetySettings:    DefaultSafetySettings,
			ResponseMIMEType:  values.OutputFormat,
		}
		agentModels[amKey] = NewQuotaAwareModel(generateConfig, values.Model, gc.Models, values.RateLimit)
	}

	cloud = &ServiceClients{
		StorageClient: sc,
		GenAIClient:   gc,
		IAMClient:     iamClient,
		AgentModels:   agentModels,
	}
	return cloud, nil
}
