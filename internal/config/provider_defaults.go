package config

import (
	"time"

	"stt-bridge/internal/app/api/provider"
)

// Bridge default configuration constants
const (
	DefaultConfigFile = "sttbridge.yaml"

	// Engine and model defaults: smallest tier, local processor, int8
	DefaultEngine      = "whisper_cpp"
	DefaultModelSize   = provider.SizeTiny
	DefaultDevice      = provider.DeviceCPU
	DefaultComputeType = provider.ComputeInt8

	// Decode defaults
	DefaultBeamSize = 5
	DefaultLanguage = "ko"

	// whisper.cpp defaults
	DefaultWhisperCppBinary = "whisper-cli"
	DefaultWhisperModelDir  = "models"

	// faster-whisper defaults
	DefaultPython            = "python3"
	DefaultHelperLoadTimeout = 600 * time.Second

	// Audio tool defaults
	DefaultFFmpeg  = "ffmpeg"
	DefaultFFprobe = "ffprobe"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
