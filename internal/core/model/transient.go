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

// Package model defines the core data structures for the application.
// This file, `transient.go`, contains struct definitions for data models that
// are primarily used for in-memory operations during the execution of a
// workflow. These objects are considered "transient" because they are not
// persisted in the journal document. They are the structured outputs the
// generative models are asked to produce, and the job bookkeeping for the
// long-running video generations.
package model

import (
	"time"

	"github.com/google/uuid"
)

// TagAnalysis is the structured output of the tag suggestion prompt: a short
// list of tags plus a single mood word describing the entry.
type TagAnalysis struct {
	Tags []string `json:"tags"` // Suggested tags, lowercase, most relevant first.
	Mood string   `json:"mood"` // A single mood word for the entry.
}

// MemoryScript is the structured output of the memory-video prompt. It is
// produced from a handful of selected entries and drives both the video
// synthesis (VisualPrompt) and the narration (Script).
type MemoryScript struct {
	VisualPrompt string `json:"visual_prompt"` // Prompt text for the video model.
	Mood         string `json:"mood"`          // Overall mood of the selected memories.
	Script       string `json:"script"`        // Short narration script for the speech model.
}

// CinemaProfile is the structured output of the life-cinema prompt. It is
// produced from the full journal history and describes the author as a film
// subject: an archetype, traits, a musical style, anthem lyrics, and a
// visual prompt for the biographical video.
type CinemaProfile struct {
	Archetype    string   `json:"archetype"`     // A short archetype label, e.g. "The Quiet Explorer".
	Traits       []string `json:"traits"`        // Recurring character traits observed in the journal.
	MusicalStyle string   `json:"musical_style"` // Description of the anthem's musical style.
	Lyrics       string   `json:"lyrics"`        // Anthem lyric text, sung by the speech model.
	VisualPrompt string   `json:"visual_prompt"` // Prompt text for the video model.
}

// GenerationKind selects which of the two video pipelines a job runs.
type GenerationKind string

const (
	// KindMemory is the short "memory video" synthesized from selected entries.
	KindMemory GenerationKind = "memory"
	// KindCinema is the biographical "life cinema" synthesized from the full journal.
	KindCinema GenerationKind = "cinema"
)

// JobState is the lifecycle of an asynchronous video generation. A job moves
// Submitted -> Polling -> Done or Failed; there are no other transitions.
type JobState string

const (
	JobSubmitted JobState = "submitted" // Accepted, workflow not yet running.
	JobPolling   JobState = "polling"   // Remote operation started, awaiting completion.
	JobDone      JobState = "done"      // Artifacts uploaded and ready to stream.
	JobFailed    JobState = "failed"    // Terminal failure; Error holds the cause.
)

// VideoJob tracks one video generation from submission to completion. The
// job registry hands the ID back to the client immediately; the client polls
// the job endpoint until the state is done or failed.
type VideoJob struct {
	Id           string         `json:"id"`                      // Unique job identifier.
	Kind         GenerationKind `json:"kind"`                    // Which pipeline the job runs.
	State        JobState       `json:"state"`                   // Current lifecycle state.
	Error        string         `json:"error,omitempty"`         // Failure cause when state is failed.
	MediaObject  string         `json:"media_object,omitempty"`  // GCS object name of the finished video.
	AnthemObject string         `json:"anthem_object,omitempty"` // GCS object name of the narration or anthem WAV.
	CreateTime   time.Time      `json:"create_time"`             // When the job was accepted.
	UpdateTime   time.Time      `json:"update_time"`             // When the state last changed.
}

// NewVideoJob creates a VideoJob in the submitted state with a generated ID.
func NewVideoJob(kind GenerationKind) *VideoJob {
	now := time.Now()
	return &VideoJob{
		Id:         uuid.NewString(),
		Kind:       kind,
		State:      JobSubmitted,
		CreateTime: now,
		UpdateTime: now,
	}
}
