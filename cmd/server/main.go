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

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/api"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/model"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/store"
	"github.com/jaycherian/gcp-go-journal-cinema/internal/telemetry"
)

func main() {
	telemetry.SetupLogging()
	slog.Info("Logging initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	config := GetConfig()

	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("Failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("Tracing initialized")

	InitState(ctx)
	slog.Info("Initialized State")

	r := gin.Default()

	// Add OpenTelemetry middleware
	r.Use(otelgin.Middleware("journal-cinema-server"))

	// Permissive CORS keeps local development of the web client simple.
	r.Use(cors.Default())

	// Create the "/api/v1" group
	apiV1 := r.Group("/api/v1")
	{
		EntryRouter(apiV1)
		VideoRouter(apiV1)
		SpeechRouter(apiV1)
		api.Dashboard(apiV1, state.journalService, state.jobService)
	}

	srv := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// Start the server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to listen: ", "error", err)
		}
	}()
	slog.Info("Server Ready on port 8080")

	// Wait for an interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutdown Server ...")

	// The context gives the server 5 seconds to finish in-flight requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server Shutdown Failed:", "error", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("Telemetry Shutdown Failed:", "error", err)
	}
	state.cloud.Close()

	log.Println("Server exiting")
}

// EntryRouter sets up the routes for journal entry CRUD, import, and the
// tagging operations.
func EntryRouter(r *gin.RouterGroup) {
	entries := r.Group("/entries")
	{
		entries.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.journalService.List())
		})

		entries.POST("", func(c *gin.Context) {
			var entry model.Entry
			if err := c.ShouldBindJSON(&entry); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			saved, err := state.journalService.Save(&entry)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusCreated, saved)
		})

		entries.GET("/:id", func(c *gin.Context) {
			entry, err := state.journalService.Get(c.Param("id"))
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, entry)
		})

		entries.PUT("/:id", func(c *gin.Context) {
			var entry model.Entry
			if err := c.ShouldBindJSON(&entry); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			entry.Id = c.Param("id")
			if _, err := state.journalService.Get(entry.Id); err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			saved, err := state.journalService.Save(&entry)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, saved)
		})

		entries.DELETE("/:id", func(c *gin.Context) {
			if err := state.journalService.Delete(c.Param("id")); err != nil {
				if errors.Is(err, store.ErrEntryNotFound) {
					c.Status(http.StatusNotFound)
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.Status(http.StatusNoContent)
		})

		// Import accepts a whole journal document, current or legacy format,
		// and reports what was recovered.
		entries.POST("/import", func(c *gin.Context) {
			raw, err := c.GetRawData()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			report, err := state.journalService.Import(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, report)
		})

		// Tag a single entry on demand.
		entries.POST("/:id/tags", func(c *gin.Context) {
			analysis, err := state.journalService.SuggestTags(c.Request.Context(), c.Param("id"))
			if err != nil {
				if errors.Is(err, store.ErrEntryNotFound) {
					c.Status(http.StatusNotFound)
					return
				}
				// Model failures are upstream failures, not client errors.
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, analysis)
		})

		// Backfill tags across every untagged entry.
		entries.POST("/tags/fill", func(c *gin.Context) {
			updated, err := state.journalService.FillMissingTags(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "updated": updated})
				return
			}
			c.JSON(http.StatusOK, gin.H{"updated": updated})
		})
	}
}

// VideoRouter sets up the routes for the asynchronous generation jobs and
// their artifacts.
func VideoRouter(r *gin.RouterGroup) {
	videos := r.Group("/videos")
	{
		// Submitting returns 202 with the job; the client polls for state.
		videos.POST("", func(c *gin.Context) {
			var req struct {
				Kind model.GenerationKind `json:"kind"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			entries := state.journalService.List()
			if req.Kind == model.KindCinema {
				// The biography reads the whole life oldest-first.
				reverse(entries)
			}

			job, err := state.jobService.Submit(c.Request.Context(), req.Kind, entries)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusAccepted, job)
		})

		videos.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, state.jobService.List())
		})

		videos.GET("/:id", func(c *gin.Context) {
			job, err := state.jobService.Get(c.Param("id"))
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			c.JSON(http.StatusOK, job)
		})

		videos.GET("/:id/artifacts", func(c *gin.Context) {
			job, err := state.jobService.Get(c.Param("id"))
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			artifacts, err := state.mediaService.ListArtifacts(c.Request.Context(), job.Id)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, artifacts)
		})

		// Stream hands back a short-lived signed URL for the requested
		// artifact so the browser pulls bytes straight from the bucket.
		videos.GET("/:id/stream", func(c *gin.Context) {
			job, err := state.jobService.Get(c.Param("id"))
			if err != nil {
				c.Status(http.StatusNotFound)
				return
			}
			if job.State != model.JobDone {
				c.JSON(http.StatusConflict, gin.H{"error": "job has not produced media yet", "state": job.State})
				return
			}

			objectName := job.MediaObject
			if c.DefaultQuery("artifact", "video") == "anthem" {
				objectName = job.AnthemObject
			}
			if objectName == "" {
				c.Status(http.StatusNotFound)
				return
			}

			signedURL, err := state.mediaService.GenerateSignedURL(c.Request.Context(), objectName, 15*time.Minute)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate streaming URL"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"url": signedURL})
		})
	}
}

// SpeechRouter sets up the synchronous text-to-speech route. The response
// body is a complete WAV file.
func SpeechRouter(r *gin.RouterGroup) {
	speech := r.Group("/speech")
	{
		speech.POST("", func(c *gin.Context) {
			var req struct {
				Text string `json:"text"`
			}
			if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
				return
			}

			wav, err := state.speechChain.Synthesize(c.Request.Context(), req.Text)
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			c.Data(http.StatusOK, "audio/wav", wav)
		})
	}
}

// reverse flips an entry slice in place.
func reverse(entries []*model.Entry) {
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
}
