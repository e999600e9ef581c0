package fatfs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies the errors a Driver can report, per the error taxonomy
// a read-only FAT driver needs: mount-time inconsistency, traversal into
// the wrong entry type, a missing path component, on-disk corruption,
// and device failure.
type Kind uint8

const (
	_ Kind = iota
	KindBadFS
	KindBadFileType
	KindFileNotFound
	KindCorrupt
	KindDevice
)

func (k Kind) String() string {
	switch k {
	case KindBadFS:
		return "bad filesystem"
	case KindBadFileType:
		return "bad file type"
	case KindFileNotFound:
		return "file not found"
	case KindCorrupt:
		return "corrupt"
	case KindDevice:
		return "device error"
	default:
		return "unknown"
	}
}

// Error is the error type Driver operations report for filesystem and
// device failures; a canceled context is returned as ctx.Err() itself.
// Cluster is only meaningful for KindCorrupt, carrying the offending FAT
// index.
type Error struct {
	Kind    Kind
	Message string
	Cluster uint32
	cause   error
}

func (e *Error) Error() string {
	if e.Kind == KindCorrupt {
		return fmt.Sprintf("fatfs: %s: invalid cluster %d", e.Kind, e.Cluster)
	}
	if e.cause != nil {
		return fmt.Sprintf("fatfs: %s: %s: %s", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("fatfs: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func badFS(format string, args ...any) *Error {
	return &Error{Kind: KindBadFS, Message: fmt.Sprintf(format, args...)}
}

func badFSWrap(cause error, msg string) *Error {
	return &Error{Kind: KindBadFS, Message: msg, cause: errors.Wrap(cause, msg)}
}

func badFileType(msg string) *Error {
	return &Error{Kind: KindBadFileType, Message: msg}
}

func fileNotFound(component string) *Error {
	return &Error{Kind: KindFileNotFound, Message: fmt.Sprintf("no such entry %q", component)}
}

func corrupt(cluster uint32) *Error {
	return &Error{Kind: KindCorrupt, Cluster: cluster}
}

func deviceErr(cause error) *Error {
	return &Error{Kind: KindDevice, Message: "device read failed", cause: errors.Wrap(cause, "fatfs: device read failed")}
}
