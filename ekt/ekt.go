// Package ekt defines the collaborator interface Encrypted Key Transport
// (RFC 8870) hooks into the SRTCP protect/unprotect pipeline through. EKT
// itself (negotiating and rotating the key-encrypting key, framing the
// EKT field) is out of scope for this repository (see DESIGN.md); only
// the narrow hook the pipeline calls at the auth-tag boundary lives here.
package ekt

// Handle lets an external EKT implementation wrap or unwrap an SRTCP
// authentication tag. A nil Handle is the default everywhere a stream can
// carry one, and callers must treat it as a no-op rather than a pointer to
// dereference.
type Handle interface {
	// ProtectAuthTag is invoked on the outbound path just before the auth
	// tag area is finalized, letting an EKT implementation fold
	// key-transport material into it.
	ProtectAuthTag(tag []byte) error

	// UnprotectAuthTag is invoked on the inbound path before MAC
	// verification, letting an EKT implementation recover the base tag
	// from a tag area that was extended with key-transport material.
	UnprotectAuthTag(tag []byte) error
}
