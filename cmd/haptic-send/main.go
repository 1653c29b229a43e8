// ABOUTME: Entry point for the haptic sender
// ABOUTME: Sends a clip file to a receiver and plays it
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/resonate-haptics/internal/client"
	"github.com/Resonate-Protocol/resonate-haptics/internal/clips"
	"github.com/Resonate-Protocol/resonate-haptics/internal/discovery"
	"github.com/Resonate-Protocol/resonate-haptics/internal/protocol"
	"github.com/google/uuid"
)

var (
	receiverAddr = flag.String("receiver", "", "Receiver address host:port (skip mDNS)")
	name         = flag.String("name", "", "Sender friendly name (default: hostname-haptic-send)")
	timeout      = flag.Duration("timeout", 10*time.Second, "How long to browse for receivers")
	wait         = flag.Bool("wait", true, "Wait for the clip to finish before exiting")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <clip.haptic>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read clip: %v", err)
	}

	// Determine sender name
	senderName := *name
	if senderName == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "unknown"
		}
		senderName = fmt.Sprintf("%s-haptic-send", hostname)
	}

	addr := *receiverAddr
	if addr == "" {
		addr, err = browse(*timeout)
		if err != nil {
			log.Fatalf("Discovery failed: %v", err)
		}
	}

	c := client.NewClient(client.Config{
		ServerAddr: addr,
		ClientID:   uuid.New().String(),
		Name:       senderName,
	})
	if err := c.Connect(); err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer c.Close()

	clipName := clips.Name(path)
	if err := check(c.Load(clipName, string(data))); err != nil {
		log.Fatalf("Load failed: %v", err)
	}
	if err := check(c.Play()); err != nil {
		log.Fatalf("Play failed: %v", err)
	}
	log.Printf("Playing %s on %s", clipName, c.Receiver.Name)

	if !*wait {
		return
	}

	// Stop the clip on Ctrl-C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case update := <-c.States:
			if update.State != "playing" {
				log.Printf("Receiver %s: %s", c.Receiver.Name, update.State)
				return
			}
		case <-ticker.C:
			if !c.IsConnected() {
				log.Printf("Receiver disconnected")
				return
			}
		case sig := <-sigChan:
			log.Printf("Received %v signal, stopping clip", sig)
			if err := check(c.Stop()); err != nil {
				log.Printf("Stop failed: %v", err)
			}
			return
		}
	}
}

// browse waits for the first receiver advertised via mDNS
func browse(timeout time.Duration) (string, error) {
	log.Printf("Browsing for haptic receivers...")

	disc := discovery.NewManager(discovery.Config{})
	defer disc.Stop()

	if err := disc.Browse(); err != nil {
		return "", err
	}

	select {
	case info := <-disc.Receivers():
		log.Printf("Discovered receiver %s at %s", info.Name, info.Addr())
		return info.Addr(), nil
	case <-time.After(timeout):
		return "", fmt.Errorf("no receiver found after %s", timeout)
	}
}

// check turns a rejected command into an error
func check(result protocol.Result, err error) error {
	if err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("%s rejected (%s): %s", result.Command, result.Kind, result.Error)
	}
	return nil
}
