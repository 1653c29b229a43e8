// ABOUTME: Boolean handle-based API over haptic controllers
// ABOUTME: Mirrors the init/load/play/stop/release binding surface; never panics across the boundary
package binding

import (
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-haptics/pkg/actuator"
	"github.com/Resonate-Protocol/resonate-haptics/pkg/haptic"
	"github.com/google/uuid"
)

// Handle is an opaque reference to a controller. The zero value is the null handle.
type Handle struct {
	id uuid.UUID
}

// IsNull reports whether h is the null handle
func (h Handle) IsNull() bool {
	return h.id == uuid.Nil
}

func (h Handle) String() string {
	return h.id.String()
}

// Config holds registry configuration
type Config struct {
	// Platform provides actuator sessions (default: actuator.NewNull())
	Platform haptic.Platform

	// Decoder validates clip data (default: haptic.JSONDecoder)
	Decoder haptic.Decoder

	// MaxSessions limits live handles (0 = unlimited)
	MaxSessions int
}

// Registry maps handles to controllers
type Registry struct {
	config Config

	mu          sync.RWMutex
	controllers map[Handle]*haptic.Controller
	lastErr     map[Handle]error
}

// NewRegistry creates a registry
func NewRegistry(config Config) *Registry {
	if config.Platform == nil {
		config.Platform = actuator.NewNull()
	}
	return &Registry{
		config:      config,
		controllers: make(map[Handle]*haptic.Controller),
		lastErr:     make(map[Handle]error),
	}
}

// Init creates a controller and returns its handle
func (r *Registry) Init() (h Handle, ok bool) {
	defer r.recoverOp("init", Handle{}, &ok)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.MaxSessions > 0 && len(r.controllers) >= r.config.MaxSessions {
		log.Printf("Haptics init failed: %v", &haptic.Error{
			Op:   "create",
			Kind: haptic.ResourceExhausted,
			Err:  fmt.Errorf("%d sessions in use", len(r.controllers)),
		})
		return Handle{}, false
	}

	ctrl, err := haptic.NewController(haptic.ControllerConfig{
		Platform: r.config.Platform,
		Decoder:  r.config.Decoder,
	})
	if err != nil {
		log.Printf("Haptics init failed: %v", err)
		return Handle{}, false
	}

	h = Handle{id: uuid.New()}
	r.controllers[h] = ctrl
	return h, true
}

// Load loads clip data into the handle's controller
func (r *Registry) Load(h Handle, data string) (ok bool) {
	defer r.recoverOp("load", h, &ok)

	ctrl := r.lookup(h)
	return r.record(h, ctrl.Load([]byte(data)))
}

// Play starts playback of the loaded clip
func (r *Registry) Play(h Handle) (ok bool) {
	defer r.recoverOp("play", h, &ok)

	ctrl := r.lookup(h)
	return r.record(h, ctrl.Play())
}

// Stop halts playback
func (r *Registry) Stop(h Handle) (ok bool) {
	defer r.recoverOp("stop", h, &ok)

	ctrl := r.lookup(h)
	return r.record(h, ctrl.Stop())
}

// Release tears down the controller and invalidates h
func (r *Registry) Release(h Handle) (ok bool) {
	defer r.recoverOp("release", h, &ok)

	ctrl := r.lookup(h)
	ok = r.record(h, ctrl.Release())
	if ok {
		r.mu.Lock()
		delete(r.controllers, h)
		delete(r.lastErr, h)
		r.mu.Unlock()
	}
	return ok
}

// State returns the handle's playback state; unknown handles report StateReleased
func (r *Registry) State(h Handle) haptic.State {
	return r.lookup(h).State()
}

// Err returns the cause of the last failed operation on h, or nil.
// Null, unknown and released handles always report InvalidHandle.
func (r *Registry) Err(h Handle) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, live := r.controllers[h]; !live {
		return &haptic.Error{Kind: haptic.InvalidHandle, Err: fmt.Errorf("unknown handle %s", h)}
	}
	return r.lastErr[h]
}

// Len returns the number of live handles
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.controllers)
}

// lookup returns nil for unknown handles; controller methods report nil as InvalidHandle
func (r *Registry) lookup(h Handle) *haptic.Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.controllers[h]
}

func (r *Registry) record(h Handle, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err == nil {
		delete(r.lastErr, h)
		return true
	}

	log.Printf("Haptics %s", err)
	if _, live := r.controllers[h]; live {
		r.lastErr[h] = err
	}
	return false
}

func (r *Registry) recoverOp(op string, h Handle, ok *bool) {
	if v := recover(); v != nil {
		r.record(h, &haptic.Error{Op: op, Kind: haptic.KindUnknown, Err: fmt.Errorf("panic: %v", v)})
		*ok = false
	}
}
