package srtp

import "fmt"

// Code enumerates the packet-boundary failure modes Protect/Unprotect can
// report. It exists separately from the sentinel error values below so that
// callers that need to switch on failure class (rather than compare against
// a specific sentinel) have something concrete to switch on.
type Code int

const (
	codeOK Code = iota
	codeBadParam
	codeAllocFail
	codeInitFail
	codeCipherFail
	codeAuthFail
	codeReplayFail
	codeReplayOld
	codeKeyExpired
	codeParse
	codeNoCtx
	codeCantCheck
)

func (c Code) String() string {
	switch c {
	case codeOK:
		return "ok"
	case codeBadParam:
		return "bad parameter"
	case codeAllocFail:
		return "allocation failure"
	case codeInitFail:
		return "initialization failure"
	case codeCipherFail:
		return "cipher failure"
	case codeAuthFail:
		return "authentication failure"
	case codeReplayFail:
		return "replay check failed"
	case codeReplayOld:
		return "packet too old"
	case codeKeyExpired:
		return "key usage limit exceeded"
	case codeParse:
		return "packet parse error"
	case codeNoCtx:
		return "no stream context"
	case codeCantCheck:
		return "cannot verify packet"
	default:
		return "unknown error"
	}
}

// codedError is a lightweight, allocation-free (beyond the struct itself)
// error kind used on the packet hot path. Unlike github.com/pkg/errors,
// which is reserved for construction-time failures, it never captures
// a stack trace: Protect/Unprotect run once per packet and a stack trace
// per dropped packet would be wasteful.
type codedError struct {
	code Code
}

func (e *codedError) Error() string { return fmt.Sprintf("srtp: %s", e.code) }

// Is reports whether target is the same sentinel, satisfying errors.Is
// without requiring callers to compare codedError pointers directly.
func (e *codedError) Is(target error) bool {
	other, ok := target.(*codedError)
	return ok && other.code == e.code
}

var (
	ErrBadParam   error = &codedError{codeBadParam}
	ErrAllocFail  error = &codedError{codeAllocFail}
	ErrInitFail   error = &codedError{codeInitFail}
	ErrCipherFail error = &codedError{codeCipherFail}
	ErrAuthFail   error = &codedError{codeAuthFail}
	ErrReplayFail error = &codedError{codeReplayFail}
	ErrReplayOld  error = &codedError{codeReplayOld}
	ErrKeyExpired error = &codedError{codeKeyExpired}
	ErrParse      error = &codedError{codeParse}
	ErrNoCtx      error = &codedError{codeNoCtx}
	ErrCantCheck  error = &codedError{codeCantCheck}
)
