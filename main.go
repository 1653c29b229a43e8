// ABOUTME: Entry point for the Resonate Haptics player
// ABOUTME: Parses CLI flags and config, then starts the player application
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/resonate-haptics/internal/app"
	"github.com/Resonate-Protocol/resonate-haptics/internal/clips"
	"github.com/Resonate-Protocol/resonate-haptics/internal/config"
	"github.com/Resonate-Protocol/resonate-haptics/internal/version"
	"github.com/Resonate-Protocol/resonate-haptics/pkg/actuator"
	"github.com/Resonate-Protocol/resonate-haptics/pkg/haptic"
)

var (
	configPath  = flag.String("config", config.DefaultPath, "YAML config file (missing file uses defaults)")
	clipsDir    = flag.String("clips", "", "Directory of .haptic clips")
	logFile     = flag.String("log-file", "resonate-haptics.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	serve       = flag.Bool("serve", false, "Accept load/play/stop from remote senders")
	port        = flag.Int("port", 0, "Receiver port (default from config: 8937)")
	name        = flag.String("name", "", "Receiver friendly name (default: hostname-haptics)")
	noMDNS      = flag.Bool("no-mdns", false, "Disable mDNS advertisement")
	backend     = flag.String("backend", "", "Actuator backend: audio or headless")
	gain        = flag.Int("gain", -1, "Output gain 0-100")
	play        = flag.String("play", "", "Play one clip by name and exit (implies -no-tui)")
	writeConfig = flag.Bool("write-config", false, "Write the effective config to -config and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *writeConfig {
		if err := config.SaveConfig(*configPath, cfg); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Wrote %s\n", *configPath)
		return
	}

	// Determine if we should use TUI or streaming logs
	useTUI := !*noTUI && *play == ""

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	// Determine receiver name
	receiverName := cfg.Receiver.Name
	if receiverName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		receiverName = fmt.Sprintf("%s-haptics", hostname)
	}

	log.Printf("Starting %s %s: %s (backend: %s)", version.Product, version.Version, receiverName, cfg.Actuator.Backend)

	library, err := clips.Scan(cfg.ClipsDir)
	if err != nil {
		log.Printf("No clip library: %v", err)
		library = clips.NewLibrary()
	}

	platform, levels := newPlatform(cfg.Actuator)

	player, err := app.New(app.Config{
		Library:    library,
		Platform:   platform,
		Levels:     levels,
		Gain:       cfg.Actuator.Gain,
		Muted:      cfg.Actuator.Muted,
		UseTUI:     useTUI,
		Serve:      *serve,
		Port:       cfg.Receiver.Port,
		Name:       receiverName,
		EnableMDNS: cfg.Receiver.MDNS,
		Autoplay:   *play,
	})
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received %v signal, shutting down gracefully...", sig)
		player.Stop()
	}()

	if err := player.Start(); err != nil {
		log.Fatalf("Player error: %v", err)
	}

	log.Printf("Player stopped")
}

// applyFlags overrides config values with explicitly set flags
func applyFlags(cfg *config.Config) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "clips":
			cfg.ClipsDir = *clipsDir
		case "port":
			cfg.Receiver.Port = *port
		case "name":
			cfg.Receiver.Name = *name
		case "no-mdns":
			cfg.Receiver.MDNS = !*noMDNS
		case "backend":
			cfg.Actuator.Backend = *backend
		case "gain":
			cfg.Actuator.Gain = *gain
		}
	})
}

// newPlatform builds the actuator platform selected by the config
func newPlatform(cfg config.ActuatorConfig) (haptic.Platform, app.Levels) {
	if cfg.Backend == config.BackendHeadless {
		return &actuator.Null{MaxSessions: cfg.MaxSessions}, nil
	}

	out := actuator.NewOto(actuator.OtoConfig{
		SampleRate:  cfg.SampleRate,
		Muted:       cfg.Muted,
		MaxSessions: cfg.MaxSessions,
	})
	out.SetGain(cfg.Gain)
	return out, out
}
