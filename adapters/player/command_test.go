package player

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/goatbotdev/goatbot/domain/repositories"
)

func newClipServer(t *testing.T, status int, body []byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestPlayNaturalEnd(t *testing.T) {
	server := newClipServer(t, http.StatusOK, []byte("clip-bytes"))

	// cat exits once the clip feed closes, a stand-in for a player
	// reaching the end of the clip.
	player, err := NewCommandPlayer("cat", zap.NewNop())
	if err != nil {
		t.Fatalf("NewCommandPlayer failed: %v", err)
	}

	pb, err := player.Play(context.Background(), server.URL+"/clip.wav")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := pb.Wait(); err != nil {
		t.Errorf("Wait after natural end failed: %v", err)
	}
}

func TestPlayStopInterrupts(t *testing.T) {
	server := newClipServer(t, http.StatusOK, []byte("clip-bytes"))

	player, err := NewCommandPlayer("sleep 5", zap.NewNop())
	if err != nil {
		t.Fatalf("NewCommandPlayer failed: %v", err)
	}

	pb, err := player.Play(context.Background(), server.URL+"/clip.wav")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	start := time.Now()
	pb.Stop()
	if err := pb.Wait(); err != nil {
		t.Errorf("Interrupted playback must not report an error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Stop did not interrupt promptly, took %v", elapsed)
	}
}

func TestPlayFetchFailure(t *testing.T) {
	server := newClipServer(t, http.StatusNotFound, nil)

	player, err := NewCommandPlayer("cat", zap.NewNop())
	if err != nil {
		t.Fatalf("NewCommandPlayer failed: %v", err)
	}

	_, err = player.Play(context.Background(), server.URL+"/missing.wav")
	if !errors.Is(err, repositories.ErrPlaybackFailed) {
		t.Errorf("Expected ErrPlaybackFailed, got %v", err)
	}
}

func TestPlayMissingBinary(t *testing.T) {
	server := newClipServer(t, http.StatusOK, []byte("clip"))

	player, err := NewCommandPlayer("definitely-not-a-player-binary", zap.NewNop())
	if err != nil {
		t.Fatalf("NewCommandPlayer failed: %v", err)
	}

	_, err = player.Play(context.Background(), server.URL+"/clip.wav")
	if !errors.Is(err, repositories.ErrPlaybackFailed) {
		t.Errorf("Expected ErrPlaybackFailed, got %v", err)
	}
}

func TestPlayerProcessFailureSurfacesOnWait(t *testing.T) {
	server := newClipServer(t, http.StatusOK, []byte("clip"))

	// false exits nonzero immediately, as a crashing player would.
	player, err := NewCommandPlayer("false", zap.NewNop())
	if err != nil {
		t.Fatalf("NewCommandPlayer failed: %v", err)
	}

	pb, err := player.Play(context.Background(), server.URL+"/clip.wav")
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := pb.Wait(); !errors.Is(err, repositories.ErrPlaybackFailed) {
		t.Errorf("Expected ErrPlaybackFailed from Wait, got %v", err)
	}
}

func TestNewCommandPlayerRejectsEmptyCommand(t *testing.T) {
	if _, err := NewCommandPlayer("", zap.NewNop()); err == nil {
		t.Error("Empty command must be rejected")
	}
}
