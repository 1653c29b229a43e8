// ABOUTME: Version information for Resonate Haptics
// ABOUTME: Reported in receiver hellos and client identification
package version

const (
	// Version is the current release
	Version = "0.1.0"

	// Product name
	Product = "Resonate Haptics"

	// Manufacturer name
	Manufacturer = "Resonate"
)
