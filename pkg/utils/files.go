package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// romExtensions are the extensions looked for inside an archive.
var romExtensions = []string{".gb", ".gbc", ".sgb"}

// LoadFile loads the given file and performs decompression if necessary.
// For archives (.zip, .7z) the first file with a ROM extension is
// returned, falling back to the first file in the archive.
func LoadFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var decoder io.Reader
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip %s: %w", filename, err)
		}
		defer gz.Close()
		decoder = gz
	case ".zip":
		zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", filename, err)
		}
		names := make([]string, len(zipReader.File))
		for i, f := range zipReader.File {
			names[i] = f.Name
		}
		i, err := pickArchiveEntry(names)
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", filename, err)
		}
		rc, err := zipReader.File[i].Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		decoder = rc
	case ".7z":
		r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("7z %s: %w", filename, err)
		}
		names := make([]string, len(r.File))
		for i, f := range r.File {
			names[i] = f.Name
		}
		i, err := pickArchiveEntry(names)
		if err != nil {
			return nil, fmt.Errorf("7z %s: %w", filename, err)
		}
		rc, err := r.File[i].Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		decoder = rc
	default:
		// .gb, .gbc, .bin and anything else is returned as is
		return data, nil
	}

	return io.ReadAll(decoder)
}

func pickArchiveEntry(names []string) (int, error) {
	if len(names) == 0 {
		return 0, fmt.Errorf("archive is empty")
	}
	for i, name := range names {
		ext := strings.ToLower(filepath.Ext(name))
		for _, want := range romExtensions {
			if ext == want {
				return i, nil
			}
		}
	}
	return 0, nil
}
