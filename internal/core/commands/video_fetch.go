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

// This file defines the command that materializes a finished video onto the
// local disk. Depending on the model, a completed operation either carries
// the MP4 bytes inline or only a download URI, so the command handles both.
//
// Logic Flow:
//  1. Receives the `genai.Video` produced by the poller from the context.
//  2. If the video bytes came back inline, writes them straight to a temp
//     file. Otherwise it downloads the URI, appending the API key because
//     the provider's file endpoints require it on direct fetches.
//  3. Adds the temp file path to the context for the uploader, and registers
//     it for cleanup when the workflow run closes.
package commands

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"google.golang.org/genai"
)

// VideoToTempFile is a command that writes a generated video to a local
// temporary file, downloading it from the provider when needed.
type VideoToTempFile struct {
	cor.BaseCommand
	httpClient     *http.Client // Used for URI downloads.
	apiKey         string       // Appended to download URIs as required by the file endpoints.
	tempFilePrefix string       // A prefix to use when naming the temporary file.
}

// NewVideoToTempFile is the constructor for creating a new VideoToTempFile command.
//
// Inputs:
//   - name: A string name for this command instance, used for logging and telemetry.
//   - httpClient: The HTTP client used for URI downloads.
//   - apiKey: The API key appended to provider download URIs.
//   - tempFilePrefix: A string prefix for the temporary file's name.
//
// Outputs:
//   - *VideoToTempFile: A pointer to the newly instantiated command.
func NewVideoToTempFile(name string, httpClient *http.Client, apiKey string, tempFilePrefix string) *VideoToTempFile {
	return &VideoToTempFile{
		BaseCommand:    *cor.NewBaseCommand(name),
		httpClient:     httpClient,
		apiKey:         apiKey,
		tempFilePrefix: tempFilePrefix,
	}
}

// Execute contains the core logic for materializing the video file.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (c *VideoToTempFile) Execute(context cor.Context) {
	video, ok := context.Get(c.GetInputParam()).(*genai.Video)
	if !ok || video == nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("no generated video to fetch"))
		return
	}

	tempFile, err := os.CreateTemp("", c.tempFilePrefix)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("could not create temp file: %w", err))
		return
	}

	var written int64
	if len(video.VideoBytes) > 0 {
		// Inline bytes: no network round trip needed.
		n, err := tempFile.Write(video.VideoBytes)
		written = int64(n)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("failed to write video bytes: %w", err))
			_ = tempFile.Close()
			return
		}
	} else {
		written, err = c.download(context, video.URI, tempFile)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), err)
			_ = tempFile.Close()
			return
		}
	}
	// The copy is complete, so close the handle to flush data to disk.
	_ = tempFile.Close()

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	log.Printf("Fetched generated video to local file %s (%d bytes)", tempFile.Name(), written)
	// Track the temp file so the workflow manager cleans it up at the end.
	context.AddTempFile(tempFile.Name())
	context.Add(c.GetOutputParam(), tempFile.Name())
}

// download streams the video at uri into w, appending the API key the
// provider's file endpoints require for direct access.
func (c *VideoToTempFile) download(context cor.Context, uri string, w io.Writer) (int64, error) {
	if uri == "" {
		return 0, fmt.Errorf("video operation returned neither bytes nor a download URI")
	}

	sep := "?"
	if strings.Contains(uri, "?") {
		sep = "&"
	}
	req, err := http.NewRequestWithContext(context.GetContext(), http.MethodGet, uri+sep+"key="+c.apiKey, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build video download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("video download failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("failed to close video download body: %v\n", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("video download returned status %s", resp.Status)
	}

	written, err := io.Copy(w, resp.Body)
	if err != nil {
		return written, fmt.Errorf("failed to copy video to local file, %d bytes written: %w", written, err)
	}
	return written, nil
}
