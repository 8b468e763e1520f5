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

// Package cloud contains data structures and utilities for interacting with
// Google Cloud services. This file defines the internal representation of a
// generated media artifact in Cloud Storage and the naming scheme that keeps
// one job's artifacts grouped under a common prefix.
//
// Structs:
//   - GCSObject: A simplified internal model of a GCS object.
//
// Functions:
//   - VideoObjectName, AnthemObjectName: Object-name builders for a job's
//     artifacts.
package cloud

import "fmt"

// GCSObject is a lightweight internal representation of an object in Cloud
// Storage, carrying only what the workflows and the media service need.
type GCSObject struct {
	Bucket   string // The bucket name.
	Name     string // The object name within the bucket.
	MIMEType string // The MIME type of the object content.
}

// VideoObjectName returns the object name for a job's generated video. The
// job ID prefix keeps both artifacts of one generation next to each other
// when listing the bucket.
func VideoObjectName(jobID string) string {
	return fmt.Sprintf("%s/video.mp4", jobID)
}

// AnthemObjectName returns the object name for a job's narration or anthem
// WAV.
func AnthemObjectName(jobID string) string {
	return fmt.Sprintf("%s/anthem.wav", jobID)
}
