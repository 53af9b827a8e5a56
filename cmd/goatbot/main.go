package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/goatbotdev/goatbot/adapters/audio"
	"github.com/goatbotdev/goatbot/adapters/gateway"
	"github.com/goatbotdev/goatbot/adapters/player"
	"github.com/goatbotdev/goatbot/domain/entities"
	"github.com/goatbotdev/goatbot/internal/chat"
	"github.com/goatbotdev/goatbot/internal/config"
	"github.com/goatbotdev/goatbot/internal/overlay"
	"github.com/goatbotdev/goatbot/internal/playback"
	"github.com/goatbotdev/goatbot/internal/recorder"
	"github.com/goatbotdev/goatbot/internal/vad"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// Backend gateway
	backend, err := gateway.NewClient(gateway.Config{
		BaseURL: cfg.BackendBaseURL,
		Timeout: cfg.RequestTimeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create backend client", zap.Error(err))
	}

	// Playback
	clipPlayer, err := player.NewCommandPlayer(cfg.PlayerCommand, logger)
	if err != nil {
		logger.Fatal("Failed to create player", zap.Error(err))
	}
	speaker := playback.NewController(clipPlayer, logger)

	// Conversation
	conv := entities.NewConversation()
	service := chat.NewService(backend, conv, speaker, logger)

	// Voice capture pipeline
	analyzer, err := audio.NewAnalyzer(cfg.EnergyMetric)
	if err != nil {
		logger.Fatal("Failed to create analyzer", zap.Error(err))
	}
	source, err := audio.NewCommandSource(cfg.CaptureCommand, cfg.FrameBytes(), logger)
	if err != nil {
		logger.Fatal("Failed to create capture source", zap.Error(err))
	}
	clk := clock.New()
	silence := vad.NewSilenceTimer(clk, cfg.SilenceDelay, logger)
	monitor := vad.NewMonitor(analyzer, silence, cfg.EnergyThreshold, cfg.VADTick, clk, logger)
	rec := recorder.NewController(source, monitor, silence, service, logger)

	// Overlay bridge
	hub := overlay.NewHub(logger)
	go hub.Run()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	overlay.InitRoutes(e, hub, conv, logger)

	// Fan conversation activity out to the terminal and the overlays.
	conv.Subscribe(func(ev entities.ConversationEvent) {
		printMessage(ev)
		switch ev.Kind {
		case entities.ConversationAppended:
			hub.Broadcast(overlay.MessageAppended(ev.Message))
		case entities.ConversationPatched:
			hub.Broadcast(overlay.MessagePatched(ev.Message))
		}
	})
	service.OnComposing(func(on bool) {
		hub.Broadcast(overlay.ComposingChanged(on))
	})
	speaker.OnEvent(playback.Events{
		OnSpeakingStarted: func(id string) { hub.Broadcast(overlay.SpeakingStarted(id)) },
		OnSpeakingStopped: func(id string) { hub.Broadcast(overlay.SpeakingStopped(id)) },
	})

	go func() {
		if err := e.Start(":" + cfg.OverlayPort); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Overlay bridge failed", zap.Error(err))
		}
	}()
	logger.Info("Overlay bridge started", zap.String("port", cfg.OverlayPort))

	// A cold backend is a warning, not a startup failure; the first
	// submission will surface an apology if it stays down.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := backend.Health(ctx); err != nil {
		logger.Warn("Backend not reachable yet", zap.Error(err))
	}
	cancel()

	go runREPL(service, rec, speaker, backend, logger)

	// Wait for interrupt signal to gracefully shut everything down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	rec.Close()
	speaker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Overlay bridge forced to shut down", zap.Error(err))
	}

	logger.Info("Goodbye")
}

// runREPL reads commands and chat text from stdin.
func runREPL(
	service *chat.Service,
	rec *recorder.Controller,
	speaker *playback.Controller,
	backend *gateway.Client,
	logger *zap.Logger,
) {
	fmt.Println("🙏 Ask Lord Ganesha. Type a message, or /rec to speak. /help for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/help":
			fmt.Println("/rec     start voice recording (auto-stops on silence)")
			fmt.Println("/stop    stop recording now")
			fmt.Println("/mute    silence voice replies")
			fmt.Println("/unmute  restore voice replies")
			fmt.Println("/langs   list supported languages")
			fmt.Println("/quit    exit")
		case line == "/rec":
			if err := rec.StartRecording(context.Background()); err != nil {
				fmt.Println("⚠️  Could not access the microphone. Check your recorder setup.")
			} else {
				fmt.Println("🎤 Listening... speak now.")
			}
		case line == "/stop":
			rec.StopRecording()
		case line == "/mute":
			speaker.SetMuted(true)
			fmt.Println("🔇 Voice replies muted.")
		case line == "/unmute":
			speaker.SetMuted(false)
			fmt.Println("🔊 Voice replies on.")
		case line == "/langs":
			printLanguages(backend)
		case line == "/quit":
			syscall.Kill(syscall.Getpid(), syscall.SIGTERM)
			return
		case strings.HasPrefix(line, "/"):
			fmt.Println("Unknown command. /help lists the available ones.")
		default:
			service.SubmitText(context.Background(), line, "")
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Error("Input stream failed", zap.Error(err))
	}
}

func printMessage(ev entities.ConversationEvent) {
	msg := ev.Message

	label := "You"
	if msg.Role == entities.MessageRoleAssistant {
		label = "Ganesha"
	}

	badge := ""
	if msg.Language != "" {
		badge = fmt.Sprintf(" [%s]", entities.LanguageName(msg.Language))
	}

	verb := ""
	if ev.Kind == entities.ConversationPatched {
		verb = " (transcribed)"
	}

	fmt.Printf("%s %s%s%s: %s\n",
		msg.Timestamp.Format("15:04:05"), label, badge, verb, msg.Content)
}

func printLanguages(backend *gateway.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	langs, err := backend.Languages(ctx)
	if err != nil {
		fmt.Println("⚠️  Could not fetch languages from the backend.")
		return
	}
	for code, name := range langs {
		fmt.Printf("  %-4s %s\n", code, name)
	}
}
