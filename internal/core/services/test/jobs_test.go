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

// Package services_test verifies the job registry's lifecycle handling
// using stub workflow commands in place of the real generation chains.
package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/commands"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubWorkflow stands in for a generation chain. It records the artifacts a
// successful run would leave in the chain context, or fails outright.
type stubWorkflow struct {
	cor.BaseCommand
	fail bool
}

func newStubWorkflow(name string, fail bool) *stubWorkflow {
	cmd := &stubWorkflow{BaseCommand: *cor.NewBaseCommand(name), fail: fail}
	cmd.InputParamName = commands.GetEntriesParamName()
	return cmd
}

func (c *stubWorkflow) Execute(ctx cor.Context) {
	if c.fail {
		ctx.AddError(c.GetName(), fmt.Errorf("render quota exhausted"))
		return
	}
	jobID, _ := ctx.Get(commands.GetJobIdParamName()).(string)
	ctx.Add(commands.GetAnthemObjectParamName(), &cloud.GCSObject{
		Bucket: "test-bucket",
		Name:   cloud.AnthemObjectName(jobID),
	})
	ctx.Add(commands.GetMediaObjectParamName(), &cloud.GCSObject{
		Bucket: "test-bucket",
		Name:   cloud.VideoObjectName(jobID),
	})
}

func testEntries() []*model.Entry {
	entry := model.NewEntry("walked along the coast at sunrise")
	return []*model.Entry{entry}
}

func TestJobServiceSubmitCompletes(t *testing.T) {
	jobs := services.NewJobService(map[model.GenerationKind]*cloud.VideoJobRunner{
		model.KindMemory: cloud.NewVideoJobRunner(newStubWorkflow("stub-memory", false)),
	})

	job, err := jobs.Submit(context.Background(), model.KindMemory, testEntries())
	require.NoError(t, err)
	require.NotEmpty(t, job.Id)
	assert.Equal(t, model.KindMemory, job.Kind)

	assert.Eventually(t, func() bool {
		current, err := jobs.Get(job.Id)
		return err == nil && current.State == model.JobDone
	}, 5*time.Second, 10*time.Millisecond)

	done, err := jobs.Get(job.Id)
	require.NoError(t, err)
	assert.Equal(t, cloud.VideoObjectName(job.Id), done.MediaObject)
	assert.Equal(t, cloud.AnthemObjectName(job.Id), done.AnthemObject)
	assert.Empty(t, done.Error)
}

func TestJobServiceSubmitRecordsFailure(t *testing.T) {
	jobs := services.NewJobService(map[model.GenerationKind]*cloud.VideoJobRunner{
		model.KindCinema: cloud.NewVideoJobRunner(newStubWorkflow("stub-cinema", true)),
	})

	job, err := jobs.Submit(context.Background(), model.KindCinema, testEntries())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		current, err := jobs.Get(job.Id)
		return err == nil && current.State == model.JobFailed
	}, 5*time.Second, 10*time.Millisecond)

	failed, err := jobs.Get(job.Id)
	require.NoError(t, err)
	assert.Contains(t, failed.Error, "render quota exhausted")
	assert.Empty(t, failed.MediaObject)
}

func TestJobServiceSubmitValidation(t *testing.T) {
	jobs := services.NewJobService(map[model.GenerationKind]*cloud.VideoJobRunner{
		model.KindMemory: cloud.NewVideoJobRunner(newStubWorkflow("stub-memory", false)),
	})

	_, err := jobs.Submit(context.Background(), model.GenerationKind("documentary"), testEntries())
	assert.Error(t, err)

	_, err = jobs.Submit(context.Background(), model.KindMemory, nil)
	assert.Error(t, err)
}

func TestJobServiceGetUnknownId(t *testing.T) {
	jobs := services.NewJobService(nil)
	_, err := jobs.Get("no-such-job")
	assert.ErrorIs(t, err, services.ErrJobNotFound)
}

func TestJobServiceListNewestFirst(t *testing.T) {
	jobs := services.NewJobService(map[model.GenerationKind]*cloud.VideoJobRunner{
		model.KindMemory: cloud.NewVideoJobRunner(newStubWorkflow("stub-memory", false)),
	})

	first, err := jobs.Submit(context.Background(), model.KindMemory, testEntries())
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := jobs.Submit(context.Background(), model.KindMemory, testEntries())
	require.NoError(t, err)

	listed := jobs.List()
	require.Len(t, listed, 2)
	assert.Equal(t, second.Id, listed[0].Id)
	assert.Equal(t, first.Id, listed[1].Id)
}
