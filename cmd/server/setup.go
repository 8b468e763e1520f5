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

package main

import (
	"context"
	"log"
	"os"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/services"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/store"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/workflow"
)

// agentModelName selects the configured text-analysis model every workflow
// uses.
const agentModelName = "journal-analyst"

// StateManager holds the shared components for the application.
type StateManager struct {
	config         *cloud.Config
	cloud          *cloud.ServiceClients
	journalService *services.JournalService
	mediaService   *services.MediaService
	jobService     *services.JobService
	speechChain    *workflow.SpeechWorkflow
}

var state = &StateManager{}

func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		// Create a default cloud config
		config := cloud.NewConfig()
		// Load it from the TOML files
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState wires the whole application: clients, the document store, the
// generation workflows, and the services the HTTP handlers call.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	documentStore, err := store.NewDocumentStore(config.Application.DataDir)
	if err != nil {
		panic(err)
	}

	state.journalService = &services.JournalService{
		Store:        documentStore,
		TagSuggester: workflow.NewTagSuggestionPipeline(config, cloudClients, agentModelName),
		TagBackfill:  workflow.NewTagBackfillPipeline(config, cloudClients, agentModelName),
	}

	state.mediaService = &services.MediaService{
		StorageClient: cloudClients.StorageClient,
		IAMClient:     cloudClients.IAMClient,
		SignerEmail:   config.Application.SignerServiceAccountEmail,
		Bucket:        config.Storage.MediaBucket,
	}

	// Each generation kind gets its own runner so jobs of different kinds
	// never share chain state.
	memoryPipeline := workflow.NewMemoryVideoPipeline(config, cloudClients, agentModelName)
	cinemaPipeline := workflow.NewLifeCinemaPipeline(config, cloudClients, agentModelName)
	state.jobService = services.NewJobService(map[model.GenerationKind]*cloud.VideoJobRunner{
		model.KindMemory: cloud.NewVideoJobRunner(memoryPipeline),
		model.KindCinema: cloud.NewVideoJobRunner(cinemaPipeline),
	})

	state.speechChain = workflow.NewSpeechPipeline(config, cloudClients)
}
