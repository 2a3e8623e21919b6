package pipes

import (
	"context"
	"errors"
	"io/fs"
)

// nodeOps is the filesystem surface the provisioner needs. All paths are
// absolute; Lstat never follows a final symlink.
type nodeOps interface {
	Mkfifo(path string, perm uint32) error
	Chmod(path string, perm uint32) error
	Lstat(path string) (fs.FileMode, error)
	Remove(path string) error
}

// classify maps an error from nodeOps onto a failure reason.
func classify(err error) Reason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ReasonTimeout
	case errors.Is(err, ErrIncompatibleNode):
		return ReasonIncompatible
	}

	if reason, ok := classifyErrno(err); ok {
		return reason
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ReasonParentMissing
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermissionDenied
	case errors.Is(err, fs.ErrExist):
		return ReasonIncompatible
	}
	return ReasonIOError
}

func isFIFO(mode fs.FileMode) bool {
	return mode.Type() == fs.ModeNamedPipe
}

// describe names the kind of node for diagnostics.
func describe(mode fs.FileMode) string {
	switch t := mode.Type(); {
	case t == 0:
		return "regular file"
	case t&fs.ModeDir != 0:
		return "directory"
	case t&fs.ModeSymlink != 0:
		return "symlink"
	case t&fs.ModeSocket != 0:
		return "socket"
	case t&fs.ModeCharDevice != 0:
		return "character device"
	case t&fs.ModeDevice != 0:
		return "block device"
	case t&fs.ModeNamedPipe != 0:
		return "named pipe"
	}
	return "irregular file"
}
