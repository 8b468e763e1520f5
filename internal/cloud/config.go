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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the Gemini model family (text analysis, video synthesis, speech
// synthesis), Google Cloud Storage, prompt templates, and the video job
// polling policy.
//
// Structs:
//   - PromptTemplates: Text templates for the three analysis prompts.
//   - AgentModel: Configuration for a text-analysis LLM.
//   - SpeechModel: Configuration for a speech-synthesis model and the PCM
//     format it emits.
//   - VideoModel: Configuration for a video-synthesis model.
//   - VideoJobPolicy: Poll interval and bound for asynchronous video jobs.
//   - Storage: Media bucket configuration.
//   - Config: The top-level aggregate loaded at startup.
//
// Functions:
//   - NewConfig: Constructor that initializes a Config with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for the
// text-analysis models. Journal entries are the user's own private writing,
// so all categories pass through without blocking; a blocked analysis of a
// difficult entry would read as data loss to the author.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// PromptTemplates holds the Go text/template sources for the three analysis
// prompts sent to the text models.
type PromptTemplates struct {
	Tags          string `toml:"tags"`           // Template for tag suggestion on a single entry.
	MemoryScript  string `toml:"memory_script"`  // Template for the memory-video script.
	CinemaProfile string `toml:"cinema_profile"` // Template for the life-cinema profile.
}

// AgentModel represents the configuration for a text-analysis LLM.
type AgentModel struct {
	Model              string  `toml:"model"`               // The model name, e.g. "gemini-2.0-flash".
	SystemInstructions string  `toml:"system_instructions"` // System instructions for the model.
	Temperature        float32 `toml:"temperature"`         // Sampling temperature.
	TopP               float32 `toml:"top_p"`               // Nucleus sampling parameter.
	TopK               float32 `toml:"top_k"`               // Top-k sampling parameter.
	MaxTokens          int32   `toml:"max_tokens"`          // Output token cap.
	OutputFormat       string  `toml:"output_format"`       // Response MIME type, "application/json" here.
	RateLimit          int     `toml:"rate_limit"`          // Requests per second allowed against the model.
	DigestCharLimit    int     `toml:"digest_char_limit"`   // Max characters of journal text included in a prompt.
}

// SpeechModel represents the configuration for a speech-synthesis model. The
// PCM fields describe the raw audio the model returns; the audio package
// needs them to build a playable WAV container around the samples.
type SpeechModel struct {
	Model         string `toml:"model"`           // The model name, e.g. "gemini-2.5-flash-preview-tts".
	Voice         string `toml:"voice"`           // Default prebuilt voice name.
	SampleRate    int    `toml:"sample_rate"`     // Samples per second of the returned PCM.
	ChannelCount  int    `toml:"channel_count"`   // Channels of the returned PCM.
	BitsPerSample int    `toml:"bits_per_sample"` // Bit depth of the returned PCM.
}

// VideoModel represents the configuration for a video-synthesis model.
type VideoModel struct {
	Model           string `toml:"model"`             // The model name, e.g. "veo-2.0-generate-001".
	AspectRatio     string `toml:"aspect_ratio"`      // Requested aspect ratio, e.g. "16:9".
	PromptCharLimit int    `toml:"prompt_char_limit"` // Max characters of prompt text sent to the model.
}

// VideoJobPolicy bounds the polling loop for an asynchronous video job. The
// remote operation occasionally wedges, so every job carries both a fixed
// poll interval and a hard timeout after which it fails.
type VideoJobPolicy struct {
	PollIntervalInSeconds int `toml:"poll_interval_in_seconds"` // Seconds between polls of the job.
	TimeoutInSeconds      int `toml:"timeout_in_seconds"`       // Hard bound on total job duration.
}

// Storage represents the configuration for the generated-media bucket.
type Storage struct {
	MediaBucket string `toml:"media_bucket"` // Bucket receiving generated videos and anthems.
}

// Config represents the overall configuration for the application, loaded
// from TOML files. It is the root container for all other configuration
// structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name                      string `toml:"name"`                         // The application name, used in telemetry.
		GoogleProjectId           string `toml:"google_project_id"`            // The GCP project receiving traces and metrics.
		APIKey                    string `toml:"api_key"`                      // The Gemini API key; the one credential the app holds.
		DataDir                   string `toml:"data_dir"`                     // Directory holding the journal document.
		ThreadPoolSize            int    `toml:"thread_pool_size"`             // Worker pool size for batch analysis tasks.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // Service account used to sign GCS streaming URLs.
	} `toml:"application"`
	Storage         Storage                   `toml:"storage"`          // Generated-media bucket configuration.
	PromptTemplates PromptTemplates           `toml:"prompt_templates"` // Analysis prompt templates.
	AgentModels     map[string]AgentModel     `toml:"agent_models"`     // Text-analysis models, keyed by a logical name (e.g. "journal-analyst").
	SpeechModels    map[string]SpeechModel    `toml:"speech_models"`    // Speech models, keyed by a logical name (e.g. "narrator").
	VideoModels     map[string]VideoModel     `toml:"video_models"`     // Video models, keyed by a logical name (e.g. "memory-video").
	VideoJobs       map[string]VideoJobPolicy `toml:"video_jobs"`       // Job polling policies, keyed by generation kind.
}

// NewConfig creates a new, initialized Config instance. The maps must be
// initialized before the TOML loader populates them.
//
// Outputs:
//   - *Config: a pointer to a new Config with its map fields initialized.
func NewConfig() *Config {
	return &Config{
		AgentModels:  make(map[string]AgentModel),
		SpeechModels: make(map[string]SpeechModel),
		VideoModels:  make(map[string]VideoModel),
		VideoJobs:    make(map[string]VideoJobPolicy),
	}
}
