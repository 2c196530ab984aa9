package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMimeTypeFor(t *testing.T) {
	tests := map[string]string{
		"a.png":            "image/png",
		"photo.JPG":        "image/jpeg",
		"report.final.pdf": "application/pdf",
		"song.mp3":         "audio/mpeg",
		"archive.7z":       "application/x-7z-compressed",
		"slides.PPTX":      "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"noext":            DefaultMimeType,
		"script.sh":        DefaultMimeType,
		".bashrc":          DefaultMimeType,
		"":                 DefaultMimeType,
	}

	for name, want := range tests {
		assert.Equal(t, want, MimeTypeFor(name), name)
	}
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "u1/f1.PNG", StorageKey("u1", "f1", "A.PNG"))
	assert.Equal(t, "u1/f1", StorageKey("u1", "f1", "README"))
}
