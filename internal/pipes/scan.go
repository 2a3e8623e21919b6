package pipes

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// Node is a named pipe found on disk.
type Node struct {
	Path string `json:"path" yaml:"path"`
	Mode Mode   `json:"mode" yaml:"mode"`
}

// Scan walks root and returns every named pipe below it, sorted by path.
// A non-empty pattern is a doublestar glob matched against the slash
// separated path relative to root. Symlinks are not followed and
// unreadable subdirectories are skipped.
func Scan(ctx context.Context, root, pattern string) ([]Node, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid match pattern %q", pattern)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	var (
		mu    sync.Mutex
		nodes []Node
	)

	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil // Skip errors
		}
		if d.Type()&fs.ModeNamedPipe == 0 {
			return nil
		}

		if pattern != "" {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); !ok {
				return nil
			}
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}

		// fastwalk invokes the callback from several goroutines
		mu.Lock()
		nodes = append(nodes, Node{Path: path, Mode: FromFileMode(fi.Mode())})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Path < nodes[j].Path })
	return nodes, nil
}
