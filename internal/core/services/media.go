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
// handlers and the lower layers. This file defines the MediaService, which
// serves the generated artifacts: it lists what a job produced and mints
// secure, time-limited URLs so a browser can stream videos and anthems
// directly from Google Cloud Storage without holding any credentials.
package services

import (
	"context"
	"fmt"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/cloud"
	"google.golang.org/api/iterator"
)

// MediaService encapsulates the clients and configuration needed to serve
// generated media from the artifact bucket.
type MediaService struct {
	StorageClient *storage.Client                   // Client for interacting with Google Cloud Storage.
	IAMClient     *credentials.IamCredentialsClient // Client for interacting with IAM, used for signing URLs.
	SignerEmail   string                            // The service account email used to sign URLs.
	Bucket        string                            // The bucket holding generated videos and anthems.
}

// ListArtifacts returns the objects a generation job produced, found by the
// job-id prefix that the upload commands write under.
//
// Inputs:
//   - ctx: The context for the request.
//   - jobID: The generation job whose artifacts to list.
//
// Outputs:
//   - []*cloud.GCSObject: The artifacts, in bucket iteration order.
//   - error: An error if the listing fails.
func (s *MediaService) ListArtifacts(ctx context.Context, jobID string) ([]*cloud.GCSObject, error) {
	out := make([]*cloud.GCSObject, 0, 2)
	it := s.StorageClient.Bucket(s.Bucket).Objects(ctx, &storage.Query{Prefix: jobID + "/"})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list artifacts for job %s: %w", jobID, err)
		}
		out = append(out, &cloud.GCSObject{Bucket: s.Bucket, Name: attrs.Name, MIMEType: attrs.ContentType})
	}
	return out, nil
}

// GenerateSignedURL creates a time-limited, secure URL to access a private
// object in the media bucket. The URL is signed through the IAM Credentials
// API using the configured service account, so no private key ever touches
// the server's disk.
//
// Inputs:
//   - ctx: The context for the request.
//   - objectName: The object to grant access to, e.g. "<job-id>/video.mp4".
//   - expires: The duration for which the URL will be valid.
//
// Outputs:
//   - string: The generated signed URL.
//   - error: An error if the signing call fails.
func (s *MediaService) GenerateSignedURL(ctx context.Context, objectName string, expires time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4, // V4 is the current signing scheme.
		Method:         "GET",                   // The URL is only valid for GET requests.
		Expires:        time.Now().Add(expires),
		GoogleAccessID: s.SignerEmail,

		// SignBytes delegates the signature to the IAM Credentials API. This
		// is the recommended approach on GCP infrastructure because it needs
		// no local service account key.
		SignBytes: func(b []byte) ([]byte, error) {
			req := &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			}
			resp, err := s.IAMClient.SignBlob(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		},
	}

	u, err := s.StorageClient.Bucket(s.Bucket).SignedURL(objectName, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).Object(%q).SignedURL: %w", s.Bucket, objectName, err)
	}
	return u, nil
}
