package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// JPEG: FF D8 FF
	jpegMagic = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
	// PNG: 89 50 4E 47
	pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	// GIF89a
	gifMagic = []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}
)

func TestSniffContentType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{name: "jpeg", data: jpegMagic, expected: "image/jpeg"},
		{name: "png", data: pngMagic, expected: "image/png"},
		{name: "gif", data: gifMagic, expected: "image/gif"},
		{name: "plain text", data: []byte("Hello, World!"), expected: "text/plain; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := bytes.NewReader(tt.data)
			contentType, err := SniffContentType(reader)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, contentType)

			// 流应被重置
			pos, _ := reader.Seek(0, 1)
			assert.Equal(t, int64(0), pos)
		})
	}
}

func TestSniffContentType_LargeData(t *testing.T) {
	largeData := make([]byte, 4096)
	copy(largeData, pngMagic)

	contentType, err := SniffContentType(bytes.NewReader(largeData))
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
}

func TestGetSafeExtension(t *testing.T) {
	assert.Equal(t, ".jpg", GetSafeExtension("image/jpeg"))
	assert.Equal(t, ".png", GetSafeExtension("image/png; charset=binary"))
	assert.Equal(t, "", GetSafeExtension("text/plain"))
	assert.True(t, IsAllowedImage("image/webp"))
	assert.False(t, IsAllowedImage("application/pdf"))
}

func TestSanitizeLogEmail(t *testing.T) {
	assert.Equal(t, "a@b.c", SanitizeLogEmail("a@b.c"))

	long := strings.Repeat("x", 80) + "@example.com"
	out := SanitizeLogEmail(long)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Len(t, out, 67)

	assert.Equal(t, "ab", SanitizeLogEmail("a\x00b"))
}
