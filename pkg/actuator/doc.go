// ABOUTME: Actuator package for rendering haptic patterns
// ABOUTME: Provides the Oto audio-coupled platform and a headless Null platform
// Package actuator provides haptic.Platform implementations.
//
// Oto renders patterns as a carrier tone shaped by the amplitude envelope and
// plays it on the default audio device, which drives audio-coupled actuators.
// Null accepts every pattern without touching hardware.
//
// Example:
//
//	platform := actuator.NewOto(actuator.OtoConfig{Gain: 80})
//	ctrl, err := haptic.NewController(haptic.ControllerConfig{Platform: platform})
package actuator
