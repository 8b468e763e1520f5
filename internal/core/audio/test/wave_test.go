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

// Package audio_test contains unit tests for the audio conversion core.
// The WAV container layout is a bit-exact contract consumed by stock media
// players, so these tests assert individual header bytes at fixed offsets
// rather than going through a decoder.
package audio_test

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-journal-cinema/internal/core/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodePayloadRoundTrip verifies that DecodePayload exactly inverts the
// standard base64 encoding for byte sequences of several lengths, including
// the empty one and lengths that exercise each padding variant.
func TestDecodePayloadRoundTrip(t *testing.T) {
	cases := [][]byte{
		{},
		{0x00},
		{0x01, 0x02},
		{0xFF, 0x00, 0xAB},
		{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02, 0x03},
	}
	for _, want := range cases {
		encoded := base64.StdEncoding.EncodeToString(want)
		got, err := audio.DecodePayload(encoded)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

// TestDecodePayloadRejectsInvalidInput verifies that characters outside the
// standard alphabet and broken padding both surface ErrInvalidEncoding
// instead of being silently dropped or substituted.
func TestDecodePayloadRejectsInvalidInput(t *testing.T) {
	for _, in := range []string{"ab*d", "a", "AAAA=", "AA==AA"} {
		_, err := audio.DecodePayload(in)
		require.Error(t, err, "payload %q should not decode", in)
		assert.True(t, errors.Is(err, audio.ErrInvalidEncoding))
	}
}

// TestEncodeWAVHeaderFields checks the exact field values at their documented
// offsets for a representative speech-model payload: 24 kHz, mono, 16-bit.
func TestEncodeWAVHeaderFields(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	out, err := audio.EncodeWAV(pcm, 24000, 1, 16)
	require.NoError(t, err)
	require.Equal(t, 44+len(pcm), len(out))

	// Magic strings at the four chunk boundaries.
	assert.Equal(t, "RIFF", string(out[0:4]))
	assert.Equal(t, "WAVE", string(out[8:12]))
	assert.Equal(t, "fmt ", string(out[12:16]))
	assert.Equal(t, "data", string(out[36:40]))

	// RIFF chunk size is 36 plus the payload length.
	assert.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(out[4:8]))
	// fmt chunk: 16-byte PCM header, audio format 1, one channel.
	assert.Equal(t, uint32(16), binary.LittleEndian.Uint32(out[16:20]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(out[20:22]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(out[22:24]))
	// Sample rate, byte rate, block align, bit depth.
	assert.Equal(t, uint32(24000), binary.LittleEndian.Uint32(out[24:28]))
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(out[28:32]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(out[32:34]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(out[34:36]))
	// Data chunk length and the payload itself, byte for byte.
	assert.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(out[40:44]))
	assert.Equal(t, pcm, out[44:])
}

// TestEncodeWAVEmptyPayload verifies the degenerate case: no samples still
// yields a complete, well-formed 44-byte container.
func TestEncodeWAVEmptyPayload(t *testing.T) {
	out, err := audio.EncodeWAV([]byte{}, 24000, 1, 16)
	require.NoError(t, err)
	require.Equal(t, 44, len(out))
	assert.Equal(t, uint32(36), binary.LittleEndian.Uint32(out[4:8]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(out[40:44]))
}

// TestEncodeWAVDeterministic verifies byte-identical output for identical
// inputs across invocations.
func TestEncodeWAVDeterministic(t *testing.T) {
	pcm := []byte{9, 8, 7, 6, 5}
	a, err := audio.EncodeWAV(pcm, 44100, 2, 16)
	require.NoError(t, err)
	b, err := audio.EncodeWAV(pcm, 44100, 2, 16)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// TestEncodeWAVRejectsInvalidParameters verifies that each non-positive
// parameter is rejected with ErrInvalidParameters.
func TestEncodeWAVRejectsInvalidParameters(t *testing.T) {
	cases := []struct {
		name          string
		sampleRate    int
		channelCount  int
		bitsPerSample int
	}{
		{"zero sample rate", 0, 1, 16},
		{"negative channel count", 24000, -1, 16},
		{"zero bit depth", 24000, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := audio.EncodeWAV([]byte{1}, tc.sampleRate, tc.channelCount, tc.bitsPerSample)
			require.Error(t, err)
			assert.True(t, errors.Is(err, audio.ErrInvalidParameters))
		})
	}
}

// TestTranscode covers the composed path from base64 payload to playable
// container, including propagation of both failure modes.
func TestTranscode(t *testing.T) {
	pcm := []byte{0x10, 0x20, 0x30, 0x40, 0x50, 0x60}
	payload := base64.StdEncoding.EncodeToString(pcm)

	out, err := audio.Transcode(payload, 24000, 1, 16)
	require.NoError(t, err)
	assert.Equal(t, 44+len(pcm), len(out))
	assert.Equal(t, pcm, out[44:])

	_, err = audio.Transcode("!!not-base64!!", 24000, 1, 16)
	assert.True(t, errors.Is(err, audio.ErrInvalidEncoding))

	_, err = audio.Transcode(payload, 0, 1, 16)
	assert.True(t, errors.Is(err, audio.ErrInvalidParameters))
}
