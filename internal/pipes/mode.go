package pipes

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
)

// Mode is a POSIX permission mask for owner, group and other.
type Mode uint32

const (
	// ModeMask covers the rwx bits for owner, group and other.
	ModeMask Mode = 0o777
	// DefaultMode is rw for everyone.
	DefaultMode Mode = 0o666

	// maxParsed also admits setuid, setgid and sticky so that such masks
	// reach the provisioner and fail per request.
	maxParsed = 0o7777
)

// ErrInvalidMode reports a mode string that is neither octal nor symbolic.
var ErrInvalidMode = errors.New("invalid mode")

// ParseMode accepts octal ("0666", "666", "0o666") and symbolic
// ("rw-rw-rw-") notation.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidMode)
	}
	if len(s) == 9 && strings.IndexFunc(s, isOctalDigit) < 0 {
		return parseSymbolic(s)
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0O")
	v, err := strconv.ParseUint(digits, 8, 32)
	if err != nil || v > maxParsed {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return Mode(v), nil
}

func isOctalDigit(r rune) bool {
	return r >= '0' && r <= '7'
}

func parseSymbolic(s string) (Mode, error) {
	const letters = "rwxrwxrwx"

	var m Mode
	for i := 0; i < 9; i++ {
		switch s[i] {
		case letters[i]:
			m |= 1 << (8 - i)
		case '-':
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
		}
	}
	return m, nil
}

// Valid reports whether m only uses the rwx bits.
func (m Mode) Valid() bool {
	return m&^ModeMask == 0
}

// Perm returns the mask in the form mkfifo(3) and chmod(2) take.
func (m Mode) Perm() uint32 {
	return uint32(m & ModeMask)
}

// FileMode converts m to an fs.FileMode permission.
func (m Mode) FileMode() fs.FileMode {
	return fs.FileMode(m & ModeMask)
}

// FromFileMode keeps only the permission bits of fm.
func FromFileMode(fm fs.FileMode) Mode {
	return Mode(fm.Perm())
}

func observed(fm fs.FileMode) *Mode {
	m := FromFileMode(fm)
	return &m
}

// String renders valid masks as "rw-rw-rw-" and anything else in octal.
func (m Mode) String() string {
	if !m.Valid() {
		return m.Octal()
	}
	return fs.FileMode(m).Perm().String()[1:]
}

// Octal renders m as a zero-prefixed octal number.
func (m Mode) Octal() string {
	return fmt.Sprintf("%04o", uint32(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
