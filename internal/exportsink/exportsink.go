// internal/exportsink/exportsink.go

// Package exportsink provides the platform side of the deck export actions.
package exportsink

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
)

// clipboardWriteAll is swapped out in tests.
var clipboardWriteAll = clipboard.WriteAll

// ErrBadFileName rejects names that would escape the target directory.
var ErrBadFileName = errors.New("invalid file name")

// Clipboard copies text to the system clipboard. DownloadFile is unsupported.
type Clipboard struct{}

func (Clipboard) CopyToClipboard(text string) error {
	if clipboard.Unsupported {
		return errors.New("clipboard not available on this system")
	}
	return clipboardWriteAll(text)
}

func (Clipboard) DownloadFile(string, string) error {
	return errors.New("clipboard sink cannot save files")
}

// Directory saves downloads as files under Dir. CopyToClipboard is unsupported.
type Directory struct {
	Dir string
}

func (d Directory) CopyToClipboard(string) error {
	return errors.New("directory sink has no clipboard")
}

// DownloadFile writes content to Dir/name, replacing any existing file.
func (d Directory) DownloadFile(name, content string) error {
	_, err := d.Save(name, content)
	return err
}

// Save is DownloadFile that also returns the written path.
func (d Directory) Save(name, content string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrBadFileName, name)
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// System is the sink the CLI uses: clipboard copies, directory downloads.
type System struct {
	Clipboard
	Directory
}

// NewSystem builds a System sink that saves into dir.
func NewSystem(dir string) System {
	return System{Directory: Directory{Dir: dir}}
}

func (s System) CopyToClipboard(text string) error {
	return s.Clipboard.CopyToClipboard(text)
}

func (s System) DownloadFile(name, content string) error {
	return s.Directory.DownloadFile(name, content)
}
