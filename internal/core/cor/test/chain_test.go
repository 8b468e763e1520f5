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

// Package cor_test contains unit tests for the chain of responsibility
// framework: the piping of one command's output into the next command's
// input, the stop-on-error behavior, and the context's temp file cleanup.
package cor_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/cor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendCommand appends its suffix to the piped string input.
type appendCommand struct {
	cor.BaseCommand
	suffix string
}

func newAppendCommand(name string, suffix string) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), suffix: suffix}
}

func (c *appendCommand) Execute(ctx cor.Context) {
	in, _ := ctx.Get(c.GetInputParam()).(string)
	ctx.Add(c.GetOutputParam(), in+c.suffix)
}

// failingCommand passes its input through but always records an error.
type failingCommand struct {
	cor.BaseCommand
}

func (c *failingCommand) Execute(ctx cor.Context) {
	ctx.Add(c.GetOutputParam(), ctx.Get(c.GetInputParam()))
	ctx.AddError(c.GetName(), fmt.Errorf("boom"))
}

func newChainContext(seed string) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, seed)
	return chainCtx
}

// TestChainPipesOutputToInput verifies the CtxOut to CtxIn flip-flop
// between successive commands.
func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("append-chain")
	chain.AddCommand(newAppendCommand("first", "-a"))
	chain.AddCommand(newAppendCommand("second", "-b"))

	chainCtx := newChainContext("seed")
	chain.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	// After the final command the chain moves its output into CtxIn.
	assert.Equal(t, "seed-a-b", chainCtx.Get(cor.CtxIn))
	assert.Nil(t, chainCtx.Get(cor.CtxOut))
}

// TestChainStopsOnError verifies that a recorded error halts the chain
// before later commands run.
func TestChainStopsOnError(t *testing.T) {
	chain := cor.NewBaseChain("failing-chain")
	chain.AddCommand(newAppendCommand("first", "-a"))
	chain.AddCommand(&failingCommand{BaseCommand: *cor.NewBaseCommand("explode")})
	chain.AddCommand(newAppendCommand("after-failure", "-c"))

	chainCtx := newChainContext("seed")
	chain.Execute(chainCtx)

	require.True(t, chainCtx.HasErrors())
	assert.Contains(t, chainCtx.GetErrors(), "explode")
	// The command after the failure never ran, so its suffix is absent.
	assert.Equal(t, "seed-a", chainCtx.Get(cor.CtxIn))
}

// TestChainContinueOnFailure verifies the opt-in behavior where later
// commands still run after a failure.
func TestChainContinueOnFailure(t *testing.T) {
	chain := cor.NewBaseChain("tolerant-chain")
	chain.ContinueOnFailure(true)
	chain.AddCommand(&failingCommand{BaseCommand: *cor.NewBaseCommand("explode")})
	chain.AddCommand(newAppendCommand("survivor", "-z"))

	chainCtx := newChainContext("seed")
	chain.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Equal(t, "seed-z", chainCtx.Get(cor.CtxIn))
}

// TestCustomParamNames verifies that a command configured with explicit
// input and output keys bypasses the default piping slots.
func TestCustomParamNames(t *testing.T) {
	cmd := newAppendCommand("custom", "-done")
	cmd.InputParamName = "my_in"
	cmd.OutputParamName = "my_out"

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add("my_in", "value")

	cmd.Execute(chainCtx)

	assert.Equal(t, "value-done", chainCtx.Get("my_out"))
	assert.Nil(t, chainCtx.Get(cor.CtxOut))
}

// TestContextCloseRemovesTempFiles verifies the context deletes registered
// temp files when a run finishes.
func TestContextCloseRemovesTempFiles(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "chain-artifact-")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.AddTempFile(f.Name())
	chainCtx.Close()

	_, err = os.Stat(f.Name())
	assert.True(t, os.IsNotExist(err))
}
