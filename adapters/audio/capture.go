package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goatbotdev/goatbot/domain/repositories"
)

// CommandSource captures raw PCM frames from an external recorder
// process such as arecord. Each frame carries frameBytes of audio.
type CommandSource struct {
	command    []string
	frameBytes int
	logger     *zap.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	cancel context.CancelFunc
	done   chan struct{}
	quit   chan struct{}
}

var _ repositories.AudioSource = (*CommandSource)(nil)

// NewCommandSource creates a capture source around a recorder command
// line. The command must write raw S16LE PCM to stdout.
func NewCommandSource(command string, frameBytes int, logger *zap.Logger) (*CommandSource, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("capture command is empty")
	}
	if frameBytes <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %d", frameBytes)
	}
	return &CommandSource{
		command:    fields,
		frameBytes: frameBytes,
		logger:     logger,
	}, nil
}

// Start launches the recorder process and returns a channel of fixed
// size PCM frames. The channel closes when the process exits or the
// context is cancelled.
func (s *CommandSource) Start(ctx context.Context) (<-chan []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return nil, fmt.Errorf("capture already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, s.command[0], s.command[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open capture pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, classifyStartError(err)
	}

	done := make(chan struct{})
	quit := make(chan struct{})
	s.cmd = cmd
	s.cancel = cancel
	s.done = done
	s.quit = quit

	frames := make(chan []byte, 16)
	go s.pump(stdout, frames, done, quit)

	s.logger.Info("Capture started",
		zap.String("command", s.command[0]),
		zap.Int("frameBytes", s.frameBytes))

	return frames, nil
}

// Stop terminates the recorder process. Safe to call when idle.
func (s *CommandSource) Stop() error {
	s.mu.Lock()
	cmd := s.cmd
	cancel := s.cancel
	done := s.done
	quit := s.quit
	s.cmd = nil
	s.cancel = nil
	s.done = nil
	s.quit = nil
	s.mu.Unlock()

	if cmd == nil {
		return nil
	}

	cancel()
	// Releasing the pump must not depend on the consumer draining the
	// frame channel; quit unblocks a pending send.
	close(quit)
	// Wait must not race the pump's pipe reads.
	<-done
	if err := cmd.Wait(); err != nil && !isKillExit(err) {
		s.logger.Warn("Capture process exited abnormally", zap.Error(err))
	}

	s.logger.Info("Capture stopped")
	return nil
}

func (s *CommandSource) pump(stdout io.Reader, frames chan<- []byte, done chan<- struct{}, quit <-chan struct{}) {
	defer close(done)
	defer close(frames)

	for {
		frame := make([]byte, s.frameBytes)
		if _, err := io.ReadFull(stdout, frame); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) &&
				!errors.Is(err, io.ErrClosedPipe) {
				s.logger.Warn("Capture pipe read failed", zap.Error(err))
			}
			return
		}
		select {
		case frames <- frame:
		case <-quit:
			return
		}
	}
}

// classifyStartError maps process launch failures onto the capture
// error taxonomy.
func classifyStartError(err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %v", repositories.ErrCaptureUnavailable, err)
	}
	if strings.Contains(err.Error(), "permission denied") {
		return fmt.Errorf("%w: %v", repositories.ErrMicrophoneDenied, err)
	}
	return fmt.Errorf("%w: %v", repositories.ErrCaptureUnavailable, err)
}

func isKillExit(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return true
	}
	return errors.Is(err, context.Canceled)
}
