package paths

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// MaxPoolSize bounds the number of pipes a single pool may expand to
const MaxPoolSize = 1024

// Path validation errors
var (
	ErrEmpty    = errors.New("path is empty")
	ErrRelative = errors.New("path is not absolute")
	ErrUnclean  = errors.New("path is not in canonical form")
	ErrNullByte = errors.New("path contains a null byte")
	ErrRoot     = errors.New("path names the filesystem root")
)

// Validate checks that p can name a pipe node: non-empty, absolute,
// already clean and free of null bytes.
func Validate(p string) error {
	switch {
	case p == "":
		return ErrEmpty
	case strings.ContainsRune(p, 0):
		return ErrNullByte
	case !filepath.IsAbs(p):
		return fmt.Errorf("%w: %q", ErrRelative, p)
	case filepath.Clean(p) != p:
		return fmt.Errorf("%w: %q (want %q)", ErrUnclean, p, filepath.Clean(p))
	case filepath.Dir(p) == p:
		return ErrRoot
	}
	return nil
}

// Pool returns count sibling paths dir/prefix0 .. dir/prefix{count-1}
func Pool(dir, prefix string, count int) ([]string, error) {
	if err := Validate(dir); err != nil {
		if !errors.Is(err, ErrRoot) {
			return nil, fmt.Errorf("pool dir: %w", err)
		}
	}
	if prefix == "" {
		return nil, errors.New("pool prefix is empty")
	}
	if strings.ContainsRune(prefix, filepath.Separator) {
		return nil, fmt.Errorf("pool prefix %q contains a path separator", prefix)
	}
	if count < 1 || count > MaxPoolSize {
		return nil, fmt.Errorf("pool count %d out of range [1, %d]", count, MaxPoolSize)
	}

	out := make([]string, count)
	for i := range out {
		out[i] = filepath.Join(dir, prefix+strconv.Itoa(i))
	}
	return out, nil
}

// Parent returns the directory that must exist for p to be created
func Parent(p string) string {
	return filepath.Dir(p)
}
