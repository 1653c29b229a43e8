// ABOUTME: mDNS service discovery for haptic receivers
// ABOUTME: Handles both advertisement (receiver side) and browsing (sender side)
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service type receivers advertise
const ServiceType = "_resonate-haptics._tcp"

// retryDelay is the pause after a failed query
const retryDelay = 2 * time.Second

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int
}

// Manager handles mDNS operations
type Manager struct {
	config    Config
	ctx       context.Context
	cancel    context.CancelFunc
	receivers chan *ReceiverInfo
}

// ReceiverInfo describes a discovered receiver
type ReceiverInfo struct {
	Name string
	Host string
	Port int
}

// Addr returns the receiver's host:port
func (r *ReceiverInfo) Addr() string {
	return net.JoinHostPort(r.Host, fmt.Sprintf("%d", r.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:    config,
		ctx:       ctx,
		cancel:    cancel,
		receivers: make(chan *ReceiverInfo, 10),
	}
}

// Advertise advertises this receiver via mDNS
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		[]string{"path=/haptics"},
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse searches for haptic receivers
func (m *Manager) Browse() error {
	go m.browseLoop()
	return nil
}

// browseLoop continuously browses for receivers
func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)

		go func() {
			for entry := range entries {
				info := entryToReceiver(entry)
				if info == nil {
					continue
				}

				log.Printf("Discovered receiver: %s at %s", info.Name, info.Addr())

				select {
				case m.receivers <- info:
				case <-m.ctx.Done():
					return
				}
			}
		}()

		params := mdns.DefaultParams(ServiceType)
		params.Entries = entries
		params.DisableIPv6 = true

		err := mdns.Query(params)
		close(entries)

		if err != nil {
			log.Printf("mDNS query failed: %v", err)
			select {
			case <-time.After(retryDelay):
			case <-m.ctx.Done():
				return
			}
		}
	}
}

// entryToReceiver converts an mDNS entry, skipping entries without an IPv4 address
func entryToReceiver(entry *mdns.ServiceEntry) *ReceiverInfo {
	if entry == nil || entry.AddrV4 == nil {
		return nil
	}
	return &ReceiverInfo{
		Name: entry.Name,
		Host: entry.AddrV4.String(),
		Port: entry.Port,
	}
}

// Receivers returns the channel of discovered receivers
func (m *Manager) Receivers() <-chan *ReceiverInfo {
	return m.receivers
}

// Stop stops the discovery manager
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
