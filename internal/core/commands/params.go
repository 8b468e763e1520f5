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

// Package commands contains the atomic workflow steps for the generation
// pipelines. This file defines the shared context parameter keys that let
// commands in different positions of a chain find data placed there by the
// workflow seed or by non-adjacent commands.
package commands

// GetJobIdParamName returns the context key holding the video job ID.
func GetJobIdParamName() string { return "__JOB_ID__" }

// GetEntriesParamName returns the context key holding the journal entries a
// workflow operates on.
func GetEntriesParamName() string { return "__ENTRIES__" }

// GetReferenceImageParamName returns the context key holding the optional
// reference image for video synthesis.
func GetReferenceImageParamName() string { return "__REFERENCE_IMAGE__" }

// GetAnthemObjectParamName returns the context key holding the GCS object
// name of the uploaded narration or anthem.
func GetAnthemObjectParamName() string { return "__ANTHEM_OBJECT__" }

// GetMediaObjectParamName returns the context key holding the GCS object
// name of the uploaded video.
func GetMediaObjectParamName() string { return "__MEDIA_OBJECT__" }

// GetUpdatedCountParamName returns the context key holding the number of
// entries a batch tagging run modified.
func GetUpdatedCountParamName() string { return "__UPDATED_COUNT__" }
