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

// Package test provides utility functions and mock data to support the
// application's test suite: a cached test configuration loader and sample
// journal documents in both the current and the legacy export format.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
)

// StateManager acts as a simple in-memory cache for the application
// configuration during test runs, so the TOML files are read once per suite.
type StateManager struct {
	config *cloud.Config
}

// state holds the singleton StateManager for the test run.
var state = &StateManager{}

// HandleErr fails the test when err is not nil. A convenience to cut
// boilerplate in test bodies.
//
// Inputs:
//   - err: The error to check.
//   - t: The *testing.T object from the current test.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestJournalDocumentText returns a journal document in the current
// format: an object with an entries array using the canonical field names.
//
// Returns:
//   - A string containing the JSON document.
func GetTestJournalDocumentText() string {
	return `{
  "entries": [
    {
      "id": "4f5b9f6e-23c1-44a2-9b1c-1f0db6cf81aa",
      "date": "2025-06-14T20:15:00Z",
      "content": "Cycled the long way home along the river and watched the herons fish at dusk.",
      "photos": [],
      "mood": "calm",
      "tags": ["cycling", "river", "evening"]
    },
    {
      "id": "9a0b6c7d-55e2-4f83-8d29-77aa01b2c3d4",
      "date": "2025-06-20T08:30:00Z",
      "content": "First day at the pottery studio. My bowl collapsed twice but the third held its shape.",
      "photos": [],
      "mood": "hopeful",
      "tags": ["pottery", "learning"]
    }
  ]
}`
}

// GetTestLegacyDocumentText returns a journal export in the old format: a
// bare top-level list, the prose under "text", the timestamp under
// "creationDate", no tags, and a photo list polluted with non-string
// values. Import tests use it to exercise the alias and cleanup rules.
//
// Returns:
//   - A string containing the JSON document.
func GetTestLegacyDocumentText() string {
	return `[
  {
    "text": "Moved into the new apartment today. Boxes everywhere, but the light in the kitchen is wonderful.",
    "creationDate": "2021-03-02T18:00:00Z",
    "photos": ["aGVsbG8gd29ybGQ=", 42, null]
  },
  {
    "text": "Quiet Sunday. Made soup, called my sister, read on the balcony until it got dark.",
    "creationDate": "2021-03-07T21:45:00Z"
  }
]`
}

// SetupOS configures the environment variables the configuration loader
// depends on, pointing it at the test override file (.env.test.toml).
//
// Returns:
//   - An error if setting any environment variable fails.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is a singleton accessor for the test configuration. The TOML
// files are loaded on first use and cached for the rest of the run.
//
// Returns:
//   - A pointer to the loaded and cached cloud.Config struct.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
