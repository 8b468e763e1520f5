// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file defines a data transformation command that follows the
// `AnalysisCreator` in a chain. It takes the raw JSON string output from the
// generative model and parses it into a strongly-typed Go struct so the
// remaining commands never touch loose JSON. The same generic command backs
// all three analysis shapes: tag analyses, memory scripts, and cinema
// profiles.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
)

// JsonToStruct is a command that parses a JSON string into a value of type T.
type JsonToStruct[T any] struct {
	cor.BaseCommand // Embeds the BaseCommand for common functionality.
}

// NewJsonToStruct is the constructor for the JsonToStruct command.
//
// Inputs:
//   - name: A string name for this command instance.
//   - outputParamName: The context key where the resulting struct will be stored.
//
// Outputs:
//   - *JsonToStruct[T]: A pointer to the newly instantiated command.
func NewJsonToStruct[T any](name string, outputParamName string) *JsonToStruct[T] {
	out := JsonToStruct[T]{BaseCommand: *cor.NewBaseCommand(name)}
	// Set the specific output parameter name for this command instance.
	out.OutputParamName = outputParamName
	return &out
}

// Execute contains the core logic for parsing the JSON.
//
// Inputs:
//   - context: The shared `cor.Context` for this workflow execution.
func (s *JsonToStruct[T]) Execute(context cor.Context) {
	// Retrieve the raw JSON string from the context, which was the output of the previous command.
	in, ok := context.Get(s.GetInputParam()).(string)
	if !ok {
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("expected a JSON string in context parameter %q", s.GetInputParam()))
		return
	}

	// Create an empty value to hold the parsed data.
	doc := new(T)

	// Unmarshal (parse) the JSON string into the Go struct.
	err := json.Unmarshal([]byte(in), doc)
	if err != nil {
		// If parsing fails, it's a critical error. Record it and stop.
		s.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(s.GetName(), fmt.Errorf("failed to unmarshal model response: %w", err))
		return
	}

	// If parsing is successful, increment the success counter.
	s.GetSuccessCounter().Add(context.GetContext(), 1)

	// Place the populated struct into the designated output parameter in the context.
	context.Add(s.GetOutputParam(), doc)

	// Also place it in the general-purpose output slot for the next command in the chain.
	context.Add(cor.CtxOut, doc)
}
