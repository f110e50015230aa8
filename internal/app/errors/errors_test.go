package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithCause(t *testing.T) {
	err := ErrModelLoad.WithCause(fmt.Errorf("ggml-tiny.bin: no such file"))

	assert.True(t, Is(err, ErrModelLoad))
	assert.False(t, Is(err, ErrTranscription))
	assert.Equal(t, "model load failed: ggml-tiny.bin: no such file", err.Error())
}

func TestWrapKeepsChain(t *testing.T) {
	inner := ErrAudioConversion.WithCause(fmt.Errorf("exit status 1"))
	err := Wrapf(inner, "normalize %s", "/tmp/a.webm")

	assert.True(t, Is(err, ErrAudioConversion))
	assert.Contains(t, err.Error(), "normalize /tmp/a.webm")
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"config", ErrInvalidConfig.WithCause(New("engine is required")), true},
		{"model load", ErrModelLoad.WithCause(fmt.Errorf("boom")), true},
		{"unknown provider", ErrProviderNotFound, true},
		{"transcription", ErrTranscription.WithCause(fmt.Errorf("decode")), false},
		{"plain", fmt.Errorf("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFatal(tt.err))
		})
	}
}
