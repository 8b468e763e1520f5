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

// Package workflow_test verifies the generation pipelines. This file,
// `base_test.go`, provides the shared setup via TestMain: it points the
// configuration loader at the test environment before any test runs. The
// pipelines are assembled against stub configurations so the suite never
// reaches a cloud service.
package workflow_test

import (
	"os"
	"testing"

	test "github.com/jaycherian/gcp-go-journal-cinema/internal/testutil"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const tName = "github.com/jaycherian/gcp-go-journal-cinema/tests/workflow"

var logger = otelslog.NewLogger(tName)

// TestMain prepares the environment the configuration loader reads before
// running the suite.
//
// Inputs:
//   - m: A pointer to testing.M, which provides access to the test suite and
//     allows running the tests via m.Run().
func TestMain(m *testing.M) {
	if err := test.SetupOS(); err != nil {
		panic(err)
	}

	logger.Info("completed test setup")

	os.Exit(m.Run())
}
