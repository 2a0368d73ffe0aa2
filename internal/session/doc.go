// Package session owns the immersive session lifecycle.
//
// Ownership boundary:
// - session state machine and its single writer
// - capability probing and session negotiation against the provider
// - renderer binding ordering for session start
// - exactly-once sessionend delivery regardless of who ended the session
package session
