//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package pipes

import (
	"io/fs"
	"os"
)

// osNodes reports every creation as unsupported; inspection and removal
// still work so that teardown of foreign nodes is classified correctly.
type osNodes struct{}

func (osNodes) Mkfifo(path string, _ uint32) error {
	return &fs.PathError{Op: "mkfifo", Path: path, Err: ErrUnsupported}
}

func (osNodes) Chmod(path string, perm uint32) error {
	return os.Chmod(path, fs.FileMode(perm))
}

func (osNodes) Lstat(path string) (fs.FileMode, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}
	return fi.Mode(), nil
}

func (osNodes) Remove(path string) error {
	return os.Remove(path)
}

func classifyErrno(error) (Reason, bool) {
	return "", false
}
