//go:build portaudio
// +build portaudio

package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// MicRecorder captures mono 16-bit PCM from the default input device.
// Start begins buffering, Stop finalizes the take as a WAV clip and
// releases the device. A failed Start leaves the recorder idle.
type MicRecorder struct {
	sampleRate  int
	logger      *slog.Logger
	initialized bool

	mu        sync.Mutex
	stream    *portaudio.Stream
	frame     []int16
	samples   []int16
	recording bool
	stop      chan struct{}
	done      chan struct{}
}

func NewMicRecorder(sampleRate int, logger *slog.Logger) *MicRecorder {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &MicRecorder{sampleRate: sampleRate, logger: logger}
}

func (r *MicRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.recording {
		return fmt.Errorf("already recording")
	}

	if !r.initialized {
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("initializing portaudio: %w", err)
		}
		r.initialized = true
	}

	r.frame = make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(r.sampleRate), framesPerBuffer, r.frame)
	if err != nil {
		return fmt.Errorf("opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("starting stream: %w", err)
	}

	r.stream = stream
	r.samples = make([]int16, 0, r.sampleRate*5)
	r.recording = true
	r.stop = make(chan struct{})
	r.done = make(chan struct{})

	go r.capture(ctx, r.stop, r.done)

	r.logger.Info("recording started", "sampleRate", r.sampleRate)
	return nil
}

func (r *MicRecorder) capture(ctx context.Context, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		default:
		}

		if err := r.stream.Read(); err != nil {
			r.logger.Warn("stream read failed", "error", err)
			return
		}

		r.mu.Lock()
		r.samples = append(r.samples, r.frame...)
		r.mu.Unlock()
	}
}

func (r *MicRecorder) Stop() ([]byte, error) {
	r.mu.Lock()
	if !r.recording {
		r.mu.Unlock()
		return nil, fmt.Errorf("not recording")
	}
	stop, done := r.stop, r.done
	r.mu.Unlock()

	close(stop)
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()

	r.stream.Stop()
	r.stream.Close()
	r.stream = nil
	r.recording = false

	samples := r.samples
	r.samples = nil

	if len(samples) == 0 {
		return nil, fmt.Errorf("no audio captured")
	}

	r.logger.Info("recording stopped", "samples", len(samples))
	return EncodeWAV(samples, r.sampleRate), nil
}

func (r *MicRecorder) Close() error {
	r.mu.Lock()
	recording := r.recording
	r.mu.Unlock()

	if recording {
		if _, err := r.Stop(); err != nil {
			r.logger.Warn("stopping recorder on close", "error", err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		portaudio.Terminate()
		r.initialized = false
	}
	return nil
}
