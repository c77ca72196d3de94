package stage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoStrategy is returned by NegotiateTarget when no strategy between the
// requested one and the fallback floor is supported.
var ErrNoStrategy = errors.New("stage: no render target strategy available")

// Strategy is how a stage provides its render target. Strategies are
// ordered from most to least preferred.
type Strategy uint8

const (
	// FrameBufferObject renders into framebuffer objects on the calling
	// context.
	FrameBufferObject Strategy = iota
	// PixelBuffer renders into a hidden context sharing objects with the
	// calling context.
	PixelBuffer
	// SeparateWindow renders into a window of its own.
	SeparateWindow
	// FrameBuffer renders into the framebuffer bound on the calling context
	// and copies into attached textures afterwards.
	FrameBuffer
)

var strategyNames = [...]string{
	FrameBufferObject: "fbo",
	PixelBuffer:       "pbuffer",
	SeparateWindow:    "window",
	FrameBuffer:       "framebuffer",
}

func (s Strategy) String() string {
	if int(s) < len(strategyNames) {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", s)
}

// ParseStrategy parses the names used in configuration files: "fbo",
// "pbuffer", "window" and "framebuffer".
func ParseStrategy(name string) (Strategy, error) {
	for i, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("stage: unknown render target strategy %q", name)
}

// Support lists the strategies available to a stage. FrameBuffer is always
// available.
type Support struct {
	FrameBufferObject bool
	PixelBuffer       bool
	SeparateWindow    bool
}

func (s Support) has(st Strategy) bool {
	switch st {
	case FrameBufferObject:
		return s.FrameBufferObject
	case PixelBuffer:
		return s.PixelBuffer
	case SeparateWindow:
		return s.SeparateWindow
	case FrameBuffer:
		return true
	}
	return false
}

// without returns s with st marked unavailable.
func (s Support) without(st Strategy) Support {
	switch st {
	case FrameBufferObject:
		s.FrameBufferObject = false
	case PixelBuffer:
		s.PixelBuffer = false
	case SeparateWindow:
		s.SeparateWindow = false
	}
	return s
}

// NegotiateTarget returns the first supported strategy at or after
// requested, never going past floor.
func NegotiateTarget(support Support, requested, floor Strategy) (Strategy, error) {
	if floor > FrameBuffer {
		floor = FrameBuffer
	}
	if requested > floor {
		return 0, fmt.Errorf("%w: requested %s is below floor %s", ErrNoStrategy, requested, floor)
	}
	for st := requested; st <= floor; st++ {
		if support.has(st) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("%w: tried %s through %s", ErrNoStrategy, requested, floor)
}
