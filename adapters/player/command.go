package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goatbotdev/goatbot/domain/repositories"
)

const fetchTimeout = 30 * time.Second

// CommandPlayer plays synthesized clips through an external player
// process such as ffplay, feeding the fetched clip over stdin.
type CommandPlayer struct {
	command []string
	http    *http.Client
	logger  *zap.Logger
}

var _ repositories.Player = (*CommandPlayer)(nil)

// NewCommandPlayer creates a player around a command line ending in
// "-i -" or equivalent stdin input flag.
func NewCommandPlayer(command string, logger *zap.Logger) (*CommandPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("player command is empty")
	}
	return &CommandPlayer{
		command: fields,
		http:    &http.Client{Timeout: fetchTimeout},
		logger:  logger,
	}, nil
}

// Play fetches the clip and launches the player process. It returns
// only once playback has genuinely started; any fetch or launch
// failure yields ErrPlaybackFailed and no handle.
func (p *CommandPlayer) Play(ctx context.Context, clipURL string) (repositories.Playback, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, clipURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrPlaybackFailed, err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", repositories.ErrPlaybackFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: clip fetch returned %d", repositories.ErrPlaybackFailed, resp.StatusCode)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(runCtx, p.command[0], p.command[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %v", repositories.ErrPlaybackFailed, err)
	}

	if err := cmd.Start(); err != nil {
		cancel()
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %v", repositories.ErrPlaybackFailed, err)
	}

	p.logger.Debug("Playback started", zap.String("clipURL", clipURL))

	// Feed the clip; a killed player surfaces as a pipe error, which
	// is the normal interruption path.
	go func() {
		defer resp.Body.Close()
		defer stdin.Close()
		if _, err := io.Copy(stdin, resp.Body); err != nil {
			p.logger.Debug("Clip feed ended early", zap.Error(err))
		}
	}()

	return &commandPlayback{cmd: cmd, cancel: cancel}, nil
}

// commandPlayback wraps a running player process.
type commandPlayback struct {
	cmd    *exec.Cmd
	cancel context.CancelFunc

	once sync.Once
	err  error
}

var _ repositories.Playback = (*commandPlayback)(nil)

// Wait blocks until the process exits. An interruption via Stop is not
// an error.
func (p *commandPlayback) Wait() error {
	p.once.Do(func() {
		err := p.cmd.Wait()
		if err != nil && !isKillExit(err) {
			p.err = fmt.Errorf("%w: %v", repositories.ErrPlaybackFailed, err)
		}
	})
	return p.err
}

// Stop kills the player process.
func (p *commandPlayback) Stop() {
	p.cancel()
}

// isKillExit reports whether the process died from a signal, the
// expected outcome of Stop. A nonzero exit code is a real failure.
func isKillExit(err error) bool {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return false
	}
	return exitErr.ExitCode() == -1
}
