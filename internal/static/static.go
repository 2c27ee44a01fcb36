// Package static embeds the bundled alarm sounds and icon into the binary
// and copies them to the filesystem
package static

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/dozeapp/doze/config"
	"github.com/dozeapp/doze/internal/osutil"
)

const filesDir = "files"

//go:embed files/*
var embeddedFiles embed.FS

// Files exposes the embedded assets so the alarm sound resolver can fall
// back to them when the data directory copy is missing.
var Files fs.FS = embeddedFiles

// FilePath returns the embedded path for a bundled file name.
func FilePath(name string) string {
	return filesDir + "/" + name
}

// CopyFilesToDataDir copies the embedded assets into the xdg data
// directory, skipping files that already exist so user replacements are
// preserved.
func CopyFilesToDataDir() error {
	return fs.WalkDir(
		embeddedFiles,
		filesDir,
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				return nil
			}

			b, err := embeddedFiles.ReadFile(path)
			if err != nil {
				return err
			}

			stripped := strings.TrimPrefix(path, filesDir+"/")

			relPath := filepath.Join(config.Dir(), "static", stripped)

			destPath, err := xdg.DataFile(relPath)
			if err != nil {
				return err
			}

			// Only write if file does not already exist
			if _, err := os.Stat(destPath); os.IsNotExist(err) {
				if err := os.MkdirAll(filepath.Dir(destPath), osutil.DirPermission); err != nil {
					return err
				}

				if err := os.WriteFile(destPath, b, 0o644); err != nil {
					return err
				}
			}

			return nil
		},
	)
}
