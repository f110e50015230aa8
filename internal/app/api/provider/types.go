package provider

import (
	"fmt"

	"stt-bridge/internal/app/errors"
)

// ProviderType defines the type of transcription provider
type ProviderType string

const (
	ProviderTypeLocal  ProviderType = "local"
	ProviderTypeHybrid ProviderType = "hybrid"
)

// SizeTiny is the smallest model tier and the default.
const SizeTiny = "tiny"

// Execution devices
const (
	DeviceCPU  = "cpu"
	DeviceCUDA = "cuda"
)

// Compute types (numeric precision the model runs in)
const (
	ComputeInt8        = "int8"
	ComputeInt8Float16 = "int8_float16"
	ComputeInt5        = "int5"
	ComputeFloat16     = "float16"
	ComputeFloat32     = "float32"
)

// Segment is one contiguous span of recognized speech.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds
}

// LoadConfig is the fixed configuration a model is constructed with.
type LoadConfig struct {
	Size        string `json:"size"`
	Device      string `json:"device"`
	ComputeType string `json:"compute_type"`

	// Engine specific settings, keyed the way the YAML config names them.
	Settings map[string]interface{} `json:"settings,omitempty"`
}

// String returns the settings-free form used in logs and diagnostics.
func (c LoadConfig) String() string {
	return fmt.Sprintf("size=%s device=%s compute_type=%s", c.Size, c.Device, c.ComputeType)
}

// StringSetting returns a string setting or def when it is absent or empty.
func (c LoadConfig) StringSetting(key, def string) string {
	if v, ok := c.Settings[key].(string); ok && v != "" {
		return v
	}
	return def
}

// IntSetting returns an integer setting or def. YAML and JSON decoders
// produce different numeric types, so both are accepted.
func (c LoadConfig) IntSetting(key string, def int) int {
	switch v := c.Settings[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// DecodeOptions are the per-call search parameters.
type DecodeOptions struct {
	BeamSize int    `json:"beam_size"`
	Language string `json:"language"`
}

// ModelInfo describes a loaded model.
type ModelInfo struct {
	Provider  string       `json:"provider"`
	Type      ProviderType `json:"type"`
	ModelPath string       `json:"model_path,omitempty"`
	Config    LoadConfig   `json:"config"`
}

// TranscriptionError represents provider-specific errors
type TranscriptionError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Provider string `json:"provider"`
	Cause    error  `json:"-"`
}

func (e *TranscriptionError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is match ErrTranscription and the underlying cause.
func (e *TranscriptionError) Unwrap() []error {
	if e.Cause != nil {
		return []error{errors.ErrTranscription, e.Cause}
	}
	return []error{errors.ErrTranscription}
}

// NewTranscriptionError builds a TranscriptionError whose message carries the cause.
func NewTranscriptionError(providerName, code string, cause error, format string, args ...interface{}) *TranscriptionError {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &TranscriptionError{
		Code:     code,
		Message:  msg,
		Provider: providerName,
		Cause:    cause,
	}
}
