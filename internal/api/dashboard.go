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

// Package api contains route definitions shared by the server. This file
// defines the dashboard endpoint, a single read-only snapshot of the
// journal and the generation jobs for the web client's home screen.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/services"
)

// Dashboard configures the statistics routes.
//
// Inputs:
//   - r: The router group the "/stats" group is added under.
//   - journal: The journal service backing the entry counts.
//   - jobs: The job registry backing the generation counts.
func Dashboard(r *gin.RouterGroup, journal *services.JournalService, jobs *services.JobService) {
	stats := r.Group("/stats")
	{
		stats.GET("", func(c *gin.Context) {
			entries := journal.List()
			tagged := 0
			for _, entry := range entries {
				if len(entry.Tags) > 0 {
					tagged++
				}
			}

			jobCounts := make(map[model.JobState]int)
			for _, job := range jobs.List() {
				jobCounts[job.State]++
			}

			c.JSON(http.StatusOK, gin.H{
				"entry_count":  len(entries),
				"tagged_count": tagged,
				"job_counts":   jobCounts,
			})
		})
	}
}
