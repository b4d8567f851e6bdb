package utils

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	rom := bytes.Repeat([]byte{0x00, 0xC3, 0x50, 0x01}, 64)

	t.Run("plain", func(t *testing.T) {
		name := filepath.Join(dir, "plain.gb")
		if err := os.WriteFile(name, rom, 0644); err != nil {
			t.Fatal(err)
		}
		got, err := LoadFile(name)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, rom) {
			t.Errorf("plain rom mismatch")
		}
	})

	t.Run("gzip", func(t *testing.T) {
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		w.Write(rom)
		w.Close()
		name := filepath.Join(dir, "rom.gb.gz")
		if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := LoadFile(name)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, rom) {
			t.Errorf("gzip rom mismatch")
		}
	})

	t.Run("zip", func(t *testing.T) {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		readme, _ := w.Create("README.txt")
		readme.Write([]byte("not a rom"))
		f, _ := w.Create("game.gbc")
		f.Write(rom)
		w.Close()
		name := filepath.Join(dir, "rom.zip")
		if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := LoadFile(name)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, rom) {
			t.Errorf("zip should pick the .gbc entry")
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(dir, "missing.gb")); err == nil {
			t.Errorf("expected error for missing file")
		}
	})
}

func TestClamp(t *testing.T) {
	if got := Clamp(0, 300, 255); got != 255 {
		t.Errorf("Clamp high = %d", got)
	}
	if got := Clamp(1, -4, 10); got != 1 {
		t.Errorf("Clamp low = %d", got)
	}
	if got := Clamp(0.0, 0.5, 1.0); got != 0.5 {
		t.Errorf("Clamp float = %f", got)
	}
}
