package provider

import (
	"context"
)

// SegmentHandler receives segments in the order the engine produces them.
// Returning an error stops the transcription.
type SegmentHandler func(Segment) error

// Model is a loaded speech-recognition model. It is built once and then
// only read; calls are made by a single caller at a time.
type Model interface {
	// Transcribe decodes the audio file at path and hands every segment to
	// emit as soon as it is available. Segments emitted before an error
	// stay emitted.
	Transcribe(ctx context.Context, path string, opts DecodeOptions, emit SegmentHandler) error

	// Info describes the loaded model.
	Info() ModelInfo

	// Close releases the model and any helper processes.
	Close() error
}
