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

// This file defines the command that persists a generated artifact to the
// media bucket in Google Cloud Storage. Both generation pipelines end by
// uploading: the narration or anthem WAV arrives as in-memory bytes, the
// fetched video as a local temp file path, and this one command handles
// either shape.
//
// The object name is derived from the job id so every artifact of a run
// lives under one prefix, and the resulting `cloud.GCSObject` is published
// under a caller-chosen context key so the job registry can record where
// the media ended up.
package commands

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
)

// ArtifactUpload is a command implementation responsible for streaming a
// generated artifact into the media bucket.
type ArtifactUpload struct {
	cor.BaseCommand                     // Embeds the BaseCommand for common functionality like naming and metrics.
	client          *storage.Client     // The GCS client for interacting with the storage service.
	bucket          string              // The name of the destination GCS bucket.
	contentType     string              // The Content-Type recorded on the uploaded object.
	objectNameFn    func(string) string // Maps a job id to the destination object name.
}

// NewArtifactUpload is the constructor for creating a new ArtifactUpload command.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - client: An initialized *storage.Client for communicating with GCS.
//   - bucket: The name of the target GCS bucket for the upload.
//   - contentType: The Content-Type to record on the object.
//   - objectNameFn: Maps the run's job id to the destination object name.
//   - outputParamName: The context key where the resulting GCSObject is stored.
//
// Outputs:
//   - *ArtifactUpload: A pointer to the newly instantiated command.
func NewArtifactUpload(
	name string,
	client *storage.Client,
	bucket string,
	contentType string,
	objectNameFn func(string) string,
	outputParamName string) *ArtifactUpload {
	out := &ArtifactUpload{
		BaseCommand:  *cor.NewBaseCommand(name),
		client:       client,
		bucket:       bucket,
		contentType:  contentType,
		objectNameFn: objectNameFn}
	out.OutputParamName = outputParamName
	return out
}

// Execute streams the artifact to GCS. The input is either the raw bytes of
// the artifact or the path of a local file holding it.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *ArtifactUpload) Execute(context cor.Context) {
	jobID, ok := context.Get(GetJobIdParamName()).(string)
	if !ok || jobID == "" {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("no job id in context"))
		return
	}

	// Resolve the input to a reader. Audio arrives as bytes, video as the
	// path of the temp file the fetch command wrote.
	var reader io.Reader
	switch in := context.Get(c.GetInputParam()).(type) {
	case []byte:
		reader = bytes.NewReader(in)
	case string:
		dat, err := os.Open(in)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("failed to open file %s: %w", in, err))
			return
		}
		defer func(dat *os.File) {
			if err := dat.Close(); err != nil {
				log.Printf("failed to close artifact file: %v\n", err)
			}
		}(dat)
		reader = dat
	default:
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("no artifact to upload in context parameter %q", c.GetInputParam()))
		return
	}

	objectName := c.objectNameFn(jobID)
	obj := c.client.Bucket(c.bucket).Object(objectName)

	writer := obj.NewWriter(context.GetContext())
	writer.ContentType = c.contentType

	// Stream the artifact into GCS without holding the whole payload in
	// memory twice.
	written, err := io.Copy(writer, reader)
	if err != nil {
		log.Printf("failed to copy to GCS or partial write: %d total bytes, %v\n", written, err)
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		_ = writer.Close()
		return
	}

	// Closing the writer finalizes the upload. An error here means the
	// object was never committed.
	if err := writer.Close(); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to finalize upload of gs://%s/%s: %w", c.bucket, objectName, err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	log.Printf("Successfully uploaded artifact to gs://%s/%s (%d bytes)", c.bucket, objectName, written)
	context.Add(c.GetOutputParam(), &cloud.GCSObject{Bucket: c.bucket, Name: objectName, MIMEType: c.contentType})
}
