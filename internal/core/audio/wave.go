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

// Package audio converts the raw PCM payloads returned by the speech
// synthesis models into playable WAV resources. The speech endpoints return
// uncompressed linear PCM as a base64 string with no container around it, so
// before a browser or media player can do anything with the samples they need
// the canonical 44-byte RIFF/WAVE header prepended.
//
// The two building blocks are:
//   - DecodePayload: inverts the standard base64 encoding used on the wire.
//   - EncodeWAV: wraps raw PCM bytes in a minimal WAV container.
//
// Both are pure functions with no I/O; Transcode composes them for the common
// "model response to playable audio" path.
package audio

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

// Sentinel errors for the two failure modes of the package. Callers can test
// for them with errors.Is regardless of the wrapping detail.
var (
	// ErrInvalidEncoding indicates the payload is not valid standard base64.
	ErrInvalidEncoding = errors.New("audio: invalid base64 payload")
	// ErrInvalidParameters indicates a non-positive audio parameter.
	ErrInvalidParameters = errors.New("audio: invalid audio parameters")
)

// headerSize is the fixed length of the RIFF/WAVE/fmt/data preamble that
// EncodeWAV prepends to the sample data.
const headerSize = 44

// waveHeader mirrors the byte layout of a canonical PCM WAV file header.
// All integer fields are little-endian on the wire, which binary.Write
// takes care of below.
type waveHeader struct {
	RiffID        [4]byte // "RIFF"
	RiffSize      uint32  // 36 + DataSize
	WaveID        [4]byte // "WAVE"
	FmtID         [4]byte // "fmt "
	FmtSize       uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for uncompressed PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample/8
	BlockAlign    uint16 // NumChannels * BitsPerSample/8
	BitsPerSample uint16
	DataID        [4]byte // "data"
	DataSize      uint32  // len(pcm)
}

// DecodePayload converts a standard-alphabet base64 string (RFC 4648, "+"
// and "/" with "=" padding) into the exact byte sequence it encodes. The
// speech models deliver their PCM this way, and entry photos are stored in
// the journal document in the same encoding.
//
// Inputs:
//   - payload: the base64 text, with any surrounding whitespace already
//     stripped by the caller.
//
// Outputs:
//   - []byte: the decoded bytes.
//   - error: ErrInvalidEncoding if the payload contains characters outside
//     the base64 alphabet or is mis-padded. The input is never silently
//     truncated or repaired.
func DecodePayload(payload string) ([]byte, error) {
	out, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return out, nil
}

// EncodeWAV wraps raw PCM sample bytes in a minimal WAV container. The output
// is always exactly 44 bytes of header followed by the payload verbatim; the
// sample content itself is never inspected or validated, so any byte sequence
// (including an empty one) is acceptable.
//
// Inputs:
//   - pcm: the raw sample bytes; may be empty.
//   - sampleRate: samples per second, e.g. 24000 for the speech models.
//   - channelCount: number of interleaved channels, e.g. 1.
//   - bitsPerSample: bit depth per sample, e.g. 16.
//
// Outputs:
//   - []byte: a byte sequence of length 44 + len(pcm), byte-identical for
//     identical inputs.
//   - error: ErrInvalidParameters if any numeric parameter is zero or
//     negative.
func EncodeWAV(pcm []byte, sampleRate, channelCount, bitsPerSample int) ([]byte, error) {
	if sampleRate <= 0 || channelCount <= 0 || bitsPerSample <= 0 {
		return nil, fmt.Errorf(
			"%w: sample_rate=%d channel_count=%d bits_per_sample=%d",
			ErrInvalidParameters, sampleRate, channelCount, bitsPerSample)
	}

	bytesPerSample := uint32(bitsPerSample) / 8
	header := waveHeader{
		RiffID:        [4]byte{'R', 'I', 'F', 'F'},
		RiffSize:      36 + uint32(len(pcm)),
		WaveID:        [4]byte{'W', 'A', 'V', 'E'},
		FmtID:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		NumChannels:   uint16(channelCount),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate) * uint32(channelCount) * bytesPerSample,
		BlockAlign:    uint16(channelCount) * uint16(bytesPerSample),
		BitsPerSample: uint16(bitsPerSample),
		DataID:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(len(pcm)),
	}

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+len(pcm)))
	// binary.Write cannot fail on a bytes.Buffer with a fixed-size struct,
	// but the error is still propagated rather than ignored.
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	buf.Write(pcm)
	return buf.Bytes(), nil
}

// Transcode is the end-to-end conversion used by the narration pipeline:
// decode the base64 payload from the speech model, then wrap the resulting
// PCM in a WAV container. Failures from either step propagate unchanged.
func Transcode(payload string, sampleRate, channelCount, bitsPerSample int) ([]byte, error) {
	pcm, err := DecodePayload(payload)
	if err != nil {
		return nil, err
	}
	return EncodeWAV(pcm, sampleRate, channelCount, bitsPerSample)
}
