package stage

import "fmt"

// Stats counts the work of the last frame drawn by a stage.
type Stats struct {
	// Leaves drawn.
	Draws int
	// glClear calls.
	Clears int
	// glBlitFramebuffer calls made for multisample resolve.
	Blits int
	// Framebuffer object applies.
	FBOBinds int
	// Attached images read back.
	ReadBacks int
	// Attached textures updated with glCopyTexSubImage2D.
	TextureCopies int
	// Strategy the target was built with.
	Strategy Strategy
}

func (s Stats) String() string {
	return fmt.Sprintf("strategy=%s draws=%d clears=%d blits=%d fbo_binds=%d read_backs=%d texture_copies=%d",
		s.Strategy, s.Draws, s.Clears, s.Blits, s.FBOBinds, s.ReadBacks, s.TextureCopies)
}
