// ABOUTME: Haptic playback core package
// ABOUTME: Clip decoding, error taxonomy and the playback controller
// Package haptic provides a single-session haptic clip playback controller.
//
// A Controller owns one actuator session and at most one loaded Clip.
// Clips are decoded by a Decoder (JSONDecoder by default) and rendered by an
// Actuator obtained from a Platform when the controller is created.
//
// Example:
//
//	ctrl, err := haptic.NewController(haptic.ControllerConfig{
//	    Platform: actuator.NewNull(),
//	})
//	err = ctrl.Load(clipJSON)
//	err = ctrl.Play()
//	err = ctrl.Stop()
//	err = ctrl.Release()
//
// Errors are *haptic.Error values carrying an ErrorKind; use KindOf or
// errors.Is with the Err* sentinels to inspect the cause.
package haptic
