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

// Package services contains the business logic sitting between the HTTP
// handlers and the lower layers. This file defines the JobService, the
// in-memory registry for asynchronous video generations. Submitting a job
// returns immediately with an id; the generation chain runs on its own
// goroutine and the registry records state transitions as it goes, so
// clients poll the job endpoint rather than holding a request open for the
// minutes a video render takes.
package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/commands"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
)

// ErrJobNotFound is returned when no job exists for a requested id.
var ErrJobNotFound = fmt.Errorf("job not found")

// JobService tracks every video generation of the process lifetime. Jobs
// are held in memory only; a restart forgets them, but their artifacts
// remain in the media bucket.
type JobService struct {
	mu      sync.RWMutex
	jobs    map[string]*model.VideoJob
	runners map[model.GenerationKind]*cloud.VideoJobRunner
}

// NewJobService creates a registry with one runner per generation kind.
//
// Inputs:
//   - runners: The workflow runner for each supported kind.
//
// Outputs:
//   - *JobService: The initialized registry.
func NewJobService(runners map[model.GenerationKind]*cloud.VideoJobRunner) *JobService {
	return &JobService{
		jobs:    make(map[string]*model.VideoJob),
		runners: runners,
	}
}

// Submit accepts a new generation job and starts its workflow in the
// background.
//
// Inputs:
//   - ctx: The request context. Cancellation is stripped so a closed HTTP
//     connection does not abort a running render.
//   - kind: Which pipeline to run.
//   - entries: The journal entries the pipeline works from.
//
// Outputs:
//   - *model.VideoJob: The accepted job, in the submitted state.
//   - error: An error when the kind is unknown or there is nothing to render.
func (s *JobService) Submit(ctx context.Context, kind model.GenerationKind, entries []*model.Entry) (*model.VideoJob, error) {
	runner, ok := s.runners[kind]
	if !ok {
		return nil, fmt.Errorf("unknown generation kind %q", kind)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("cannot generate a video from an empty journal")
	}

	job := model.NewVideoJob(kind)
	s.mu.Lock()
	s.jobs[job.Id] = job
	s.mu.Unlock()

	go s.run(context.WithoutCancel(ctx), runner, job.Id, entries)

	return s.snapshot(job.Id), nil
}

// run executes the workflow for one job and records the outcome.
func (s *JobService) run(ctx context.Context, runner *cloud.VideoJobRunner, jobID string, entries []*model.Entry) {
	s.transition(jobID, func(job *model.VideoJob) {
		job.State = model.JobPolling
	})

	seed := map[string]interface{}{
		commands.GetJobIdParamName():   jobID,
		commands.GetEntriesParamName(): entries,
	}
	chainCtx, err := runner.Run(ctx, jobID, seed)
	if err != nil {
		log.Printf("video job %s failed: %v\n", jobID, err)
		s.transition(jobID, func(job *model.VideoJob) {
			job.State = model.JobFailed
			job.Error = err.Error()
		})
		return
	}

	anthem, _ := chainCtx.Get(commands.GetAnthemObjectParamName()).(*cloud.GCSObject)
	media, _ := chainCtx.Get(commands.GetMediaObjectParamName()).(*cloud.GCSObject)

	s.transition(jobID, func(job *model.VideoJob) {
		job.State = model.JobDone
		if anthem != nil {
			job.AnthemObject = anthem.Name
		}
		if media != nil {
			job.MediaObject = media.Name
		}
	})
}

// Get returns a copy of the job with the given id.
func (s *JobService) Get(id string) (*model.VideoJob, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// List returns copies of all known jobs, newest first.
func (s *JobService) List() []*model.VideoJob {
	s.mu.RLock()
	out := make([]*model.VideoJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		copied := *job
		out = append(out, &copied)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreateTime.After(out[j].CreateTime)
	})
	return out
}

// transition applies a mutation to a job under the registry lock and bumps
// its update time.
func (s *JobService) transition(id string, mutate func(job *model.VideoJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return
	}
	mutate(job)
	job.UpdateTime = time.Now()
}

// snapshot returns a copy of a job so callers never share the registry's
// mutable state.
func (s *JobService) snapshot(id string) *model.VideoJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}
