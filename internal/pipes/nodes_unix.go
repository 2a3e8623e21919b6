//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package pipes

import (
	"errors"
	"io/fs"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

type osNodes struct{}

func (osNodes) Mkfifo(path string, perm uint32) error {
	if err := unix.Mkfifo(path, perm); err != nil {
		return &fs.PathError{Op: "mkfifo", Path: path, Err: err}
	}
	return nil
}

func (osNodes) Chmod(path string, perm uint32) error {
	if err := unix.Chmod(path, perm); err != nil {
		return &fs.PathError{Op: "chmod", Path: path, Err: err}
	}
	return nil
}

func (osNodes) Lstat(path string) (fs.FileMode, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	return fi.Mode(), nil
}

func (osNodes) Remove(path string) error {
	if err := unix.Unlink(path); err != nil {
		return &fs.PathError{Op: "unlink", Path: path, Err: err}
	}
	return nil
}

func classifyErrno(err error) (Reason, bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return "", false
	}

	switch errno {
	case unix.ENOENT, unix.ENOTDIR:
		return ReasonParentMissing, true
	case unix.EACCES, unix.EPERM:
		return ReasonPermissionDenied, true
	case unix.EEXIST:
		return ReasonIncompatible, true
	}
	return ReasonIOError, true
}
