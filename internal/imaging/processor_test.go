// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// createTestImage creates a simple test image with the given dimensions.
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeJPEG(t, createTestImage(100, 60))
	result, err := p.Process(bytes.NewReader(data), "hero_image_1_ab.jpg")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if result.Width != 100 || result.Height != 60 {
		t.Errorf("dimensions = %dx%d; want 100x60", result.Width, result.Height)
	}
	if result.Size == 0 {
		t.Error("Size should be non-zero")
	}
	if _, err := os.Stat(result.FilePath); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
	if filepath.Dir(result.FilePath) != dir {
		t.Errorf("file saved to %q; want directly under %q", result.FilePath, dir)
	}
}

func TestProcess_RejectsNonImage(t *testing.T) {
	p := NewProcessor(t.TempDir())

	if _, err := p.Process(bytes.NewReader([]byte("not an image")), "x.jpg"); err == nil {
		t.Error("Process should fail on non-image data")
	}
}

func TestProcess_RejectsTraversalFilename(t *testing.T) {
	p := NewProcessor(t.TempDir())

	data := encodeJPEG(t, createTestImage(10, 10))
	result, err := p.Process(bytes.NewReader(data), "../escape.jpg")
	if err != nil {
		// Rejecting outright is fine too.
		return
	}
	if filepath.Base(result.FilePath) != "escape.jpg" {
		t.Errorf("filename not sanitized: %q", result.FilePath)
	}
	rel, err := filepath.Rel(p.uploadDir, result.FilePath)
	if err != nil || rel != "escape.jpg" {
		t.Errorf("file escaped upload dir: %q", result.FilePath)
	}
}

func TestCreateThumbnail(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeJPEG(t, createTestImage(1200, 800))
	result, err := p.Process(bytes.NewReader(data), "wide.jpg")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	thumbPath, err := p.CreateThumbnail(result.FilePath, "wide.jpg")
	if err != nil {
		t.Fatalf("CreateThumbnail: %v", err)
	}
	if filepath.Dir(thumbPath) != filepath.Join(dir, ThumbDir) {
		t.Errorf("thumbnail saved to %q; want under %s/", thumbPath, ThumbDir)
	}

	w, h, err := p.GetImageDimensions(thumbPath)
	if err != nil {
		t.Fatalf("GetImageDimensions: %v", err)
	}
	if w != ThumbWidth {
		t.Errorf("thumbnail width = %d; want %d", w, ThumbWidth)
	}
	if h >= 800 {
		t.Errorf("thumbnail height = %d; should scale down", h)
	}
}

func TestCreateThumbnail_SmallImageKeepsSize(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	data := encodeJPEG(t, createTestImage(200, 150))
	result, err := p.Process(bytes.NewReader(data), "small.jpg")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	thumbPath, err := p.CreateThumbnail(result.FilePath, "small.jpg")
	if err != nil {
		t.Fatalf("CreateThumbnail: %v", err)
	}

	w, _, err := p.GetImageDimensions(thumbPath)
	if err != nil {
		t.Fatalf("GetImageDimensions: %v", err)
	}
	if w != 200 {
		t.Errorf("small image should not be upscaled: width = %d; want 200", w)
	}
}

func TestProcess_PNGRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := NewProcessor(dir)

	var buf bytes.Buffer
	if err := png.Encode(&buf, createTestImage(50, 50)); err != nil {
		t.Fatalf("encoding png: %v", err)
	}

	result, err := p.Process(bytes.NewReader(buf.Bytes()), "img.png")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	f, err := os.Open(result.FilePath)
	if err != nil {
		t.Fatalf("opening saved file: %v", err)
	}
	defer f.Close()
	_, format, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decoding saved file: %v", err)
	}
	if format != "png" {
		t.Errorf("saved format = %q; want png", format)
	}
}

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"a.jpg", "jpeg"},
		{"a.JPEG", "jpeg"},
		{"a.png", "png"},
		{"a.gif", "gif"},
		{"a.webp", "webp"},
		{"a.bin", "jpeg"},
		{"noext", "jpeg"},
	}

	for _, tt := range tests {
		if got := formatFromFilename(tt.filename); got != tt.want {
			t.Errorf("formatFromFilename(%q) = %q; want %q", tt.filename, got, tt.want)
		}
	}
}
