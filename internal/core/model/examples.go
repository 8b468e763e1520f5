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

// Package model defines the data structures for the application. This file,
// `examples.go`, provides factory functions for creating hardcoded, example
// instances of the data models.
//
// These example objects are crucial for "few-shot" prompting with the
// generative AI models. By providing a concrete example of the desired JSON
// output structure within the prompt itself, we guide the AI to return data
// that is consistent, correctly formatted, and easily parsable.
package model

// GetExampleTagAnalysis creates a sample TagAnalysis object used as the
// few-shot example in the tag suggestion prompt.
//
// Outputs:
//   - *TagAnalysis: a pointer to a hardcoded TagAnalysis object.
func GetExampleTagAnalysis() *TagAnalysis {
	return &TagAnalysis{
		Tags: []string{"family", "cooking", "sunday-dinner", "gratitude"},
		Mood: "content",
	}
}

// GetExampleMemoryScript creates a sample MemoryScript object used as the
// few-shot example in the memory-video prompt. The script is deliberately
// short; the narration for a memory video is only a few sentences.
//
// Outputs:
//   - *MemoryScript: a pointer to a hardcoded MemoryScript object.
func GetExampleMemoryScript() *MemoryScript {
	return &MemoryScript{
		VisualPrompt: "A warm, sun-drenched kitchen in late afternoon. Flour dust hangs in the light as two pairs of hands fold dough together. Slow, handheld camera, film grain, nostalgic color palette.",
		Mood:         "nostalgic",
		Script: `Some afternoons don't announce themselves as memories.
They arrive as flour on the counter, as laughter from the next room.
Only later do we understand: this was the good part.`,
	}
}

// GetExampleCinemaProfile creates a sample CinemaProfile object used as the
// few-shot example in the life-cinema prompt.
//
// Outputs:
//   - *CinemaProfile: a pointer to a hardcoded CinemaProfile object.
func GetExampleCinemaProfile() *CinemaProfile {
	return &CinemaProfile{
		Archetype:    "The Quiet Explorer",
		Traits:       []string{"curious", "patient", "loyal", "understated"},
		MusicalStyle: "Slow-building indie folk with warm acoustic guitar, brushed drums, and a distant choir in the final chorus.",
		Lyrics: `I kept the maps I never followed,
pressed like flowers in a drawer.
Every small road I borrowed
led me back to my own door.`,
		VisualPrompt: "A single figure walking through changing seasons in one continuous shot: city streets dissolve into forest trails, then a coastline at dusk. Cinematic, anamorphic lens flares, golden hour light.",
	}
}
