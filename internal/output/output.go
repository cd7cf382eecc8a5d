// Package output decides where a report is written and writes it without
// leaving partial files behind.
package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	appLog "github.com/UncleDan/ics-to-word/internal/log"
)

// DefaultSuffix is inserted between the input base name and the extension.
const DefaultSuffix = ".Calendar"

// ErrPersist is matched by every PersistError.
var ErrPersist = errors.New("output not written")

// PersistError reports a report that could not be written to Path.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() []error { return []error{ErrPersist, e.Err} }

// Conflict controls what happens when the target file already exists.
type Conflict string

const (
	ConflictOverwrite Conflict = "overwrite"
	ConflictFail      Conflict = "fail"
	ConflictRename    Conflict = "rename"
)

// ParseConflict maps a config/flag value to a Conflict. Empty means
// overwrite, matching a plain save.
func ParseConflict(s string) (Conflict, error) {
	switch c := Conflict(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return ConflictOverwrite, nil
	case ConflictOverwrite, ConflictFail, ConflictRename:
		return c, nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q (want overwrite, fail or rename)", s)
	}
}

// DefaultPath returns <dir>/<base><suffix><ext> for an input file. An empty
// dir means the input's own directory.
func DefaultPath(input, dir, suffix, ext string) string {
	if dir == "" {
		dir = filepath.Dir(input)
	}
	name := filepath.Base(input)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "calendar"
	}
	return filepath.Join(dir, base+suffix+ext)
}

// maxRenameAttempts bounds the " (n)" search for ConflictRename.
const maxRenameAttempts = 1000

// Resolve applies the conflict policy to path and returns the path to
// write to.
func Resolve(path string, policy Conflict) (string, error) {
	_, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return path, nil
	case err != nil:
		return "", &PersistError{Path: path, Err: err}
	}

	switch policy {
	case ConflictFail:
		return "", &PersistError{Path: path, Err: fs.ErrExist}
	case ConflictRename:
		ext := filepath.Ext(path)
		stem := strings.TrimSuffix(path, ext)
		for n := 1; n <= maxRenameAttempts; n++ {
			candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
			if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
				appLog.Debug("output renamed to avoid conflict", "path", path, "renamed", candidate)
				return candidate, nil
			}
		}
		return "", &PersistError{Path: path, Err: fmt.Errorf("no free name after %d attempts", maxRenameAttempts)}
	default:
		return path, nil
	}
}

// WriteAtomic streams write into a temp file next to path, then renames it
// into place, replacing any existing file. On any failure the temp file is
// removed and path is left untouched.
func WriteAtomic(path string, write func(w io.Writer) error) error {
	return writeVia(path, write, os.Rename)
}

// WriteNew is WriteAtomic for a path that must not exist yet. The temp file
// is hard-linked to path, which fails with fs.ErrExist if a file appeared
// there after Resolve; the existing file is never replaced.
func WriteNew(path string, write func(w io.Writer) error) error {
	return writeVia(path, write, os.Link)
}

// Write writes path with WriteAtomic under ConflictOverwrite and with
// WriteNew otherwise.
func Write(path string, policy Conflict, write func(w io.Writer) error) error {
	if policy == ConflictOverwrite || policy == "" {
		return WriteAtomic(path, write)
	}
	return WriteNew(path, write)
}

func writeVia(path string, write func(w io.Writer) error, publish func(oldpath, newpath string) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".ics2word-*.tmp")
	if err != nil {
		return &PersistError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := write(tmp); err != nil {
		tmp.Close()
		return &PersistError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return &PersistError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PersistError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return &PersistError{Path: path, Err: err}
	}
	if err := publish(tmpName, path); err != nil {
		return &PersistError{Path: path, Err: err}
	}
	return nil
}
