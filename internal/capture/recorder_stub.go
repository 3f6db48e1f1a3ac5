//go:build !portaudio
// +build !portaudio

package capture

import (
	"context"
	"fmt"
	"log/slog"
)

// MicRecorder stub when portaudio is not available.
type MicRecorder struct {
	logger *slog.Logger
}

func NewMicRecorder(sampleRate int, logger *slog.Logger) *MicRecorder {
	return &MicRecorder{logger: logger}
}

func (r *MicRecorder) Start(_ context.Context) error {
	return fmt.Errorf("microphone not available: rebuild with -tags portaudio")
}

func (r *MicRecorder) Stop() ([]byte, error) {
	return nil, fmt.Errorf("microphone not available")
}

func (r *MicRecorder) Close() error {
	return nil
}
