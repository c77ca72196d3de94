// Package glstate is a per-context OpenGL state cache and framebuffer-object
// manager for scene-graph renderers.
//
// # Overview
//
// OpenGL is a stateful, context-scoped API: every glEnable, glBindTexture or
// glUseProgram changes hidden driver state, and redundant calls are costly.
// glstate sits between a scene-graph traversal and the driver. Callers push
// layers of render state as they descend the graph and glstate emits only
// the driver calls needed to move from what is currently bound to what is
// requested.
//
// # Architecture
//
// The module is organized into:
//   - gl: enum table, the Driver interface and per-context Capabilities
//   - gl/glbackend: Driver implemented over go-gl (OpenGL 4.1 core)
//   - glctx: context identity registry and deferred GL object deletion
//   - state: the State cache, StateSet layers, textures, programs, uniforms
//   - fbo: renderbuffers, framebuffer attachments and framebuffer objects
//   - stage: RenderStage, which drives one off-screen or on-screen pass
//   - window: glfw-backed graphics contexts for pbuffer/window fallbacks
//   - config: TOML and environment configuration
//
// # Quick Start
//
//	reg := glctx.NewRegistry()
//	id := reg.NewContextID(nil)
//	st := state.New(id, driver, state.WithRegistry(reg))
//
//	ss := state.NewStateSet()
//	ss.SetMode(gl.DEPTH_TEST, state.On)
//	st.PushStateSet(ss)
//	st.Apply()
//
// # Threading
//
// A State is driven by exactly one goroutine at a time, the one that has its
// context current. Deferred deletion queues are safe to feed from any
// goroutine; they are drained on the owning context's thread.
//
// # Failure model
//
// Nothing on the per-frame path returns an error or panics because of the
// driver. Missing capabilities degrade features and are logged through the
// logger configured with SetLogger.
package glstate
