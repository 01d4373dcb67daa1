package filesystem

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_Decode(t *testing.T) {
	d, err := NewDecoder("")
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    []byte
		text     string
		encoding string
		err      error
	}{
		{"empty", []byte{}, "", "utf-8", nil},
		{"ascii", []byte("hello\n"), "hello\n", "utf-8", nil},
		{"utf8 multibyte", []byte("héllo → ok"), "héllo → ok", "utf-8", nil},
		{"utf8 bom stripped", append([]byte{0xEF, 0xBB, 0xBF}, "x=1"...), "x=1", "utf-8", nil},
		{"utf16le bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi", "utf-16le", nil},
		{"utf16be bom", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "hi", "utf-16be", nil},
		{"nul byte", []byte("abc\x00def"), "", "", ErrBinary},
		{"png signature", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D}, "", "", ErrBinary},
		{"jpeg signature", []byte{0xFF, 0xD8, 0xFF, 0xE0, 'J', 'F', 'I', 'F'}, "", "", ErrBinary},
		{"text starting with BM", []byte("BM25 ranking notes\n"), "BM25 ranking notes\n", "utf-8", nil},
		{"text starting with MZ", []byte("MZ header layout\n"), "MZ header layout\n", "utf-8", nil},
		{"text starting with SQLite", []byte("SQLite tips\n"), "SQLite tips\n", "utf-8", nil},
		{"postscript source", []byte("%!PS-Adobe-3.0\n"), "%!PS-Adobe-3.0\n", "utf-8", nil},
		{"latin1 without fallback", []byte{'c', 'a', 'f', 0xE9}, "", "", ErrUndecodable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, enc, err := d.Decode(tt.input)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), "got %v, want %v", err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
			assert.Equal(t, tt.encoding, enc)
		})
	}
}

func TestDecoder_Fallback(t *testing.T) {
	d, err := NewDecoder("latin1")
	require.NoError(t, err)

	text, enc, err := d.Decode([]byte{'c', 'a', 'f', 0xE9})
	require.NoError(t, err)
	assert.Equal(t, "café", text)
	assert.Equal(t, "windows-1252", enc)

	// Valid UTF-8 never goes through the fallback
	text, enc, err = d.Decode([]byte("café"))
	require.NoError(t, err)
	assert.Equal(t, "café", text)
	assert.Equal(t, "utf-8", enc)
}

func TestNewDecoder_UnknownFallback(t *testing.T) {
	_, err := NewDecoder("no-such-charset")
	assert.Error(t, err)
}

func TestIsBinary(t *testing.T) {
	assert.False(t, IsBinary(nil))
	assert.False(t, IsBinary([]byte("package main\n")))
	assert.True(t, IsBinary([]byte{'P', 'K', 0x03, 0x04, 0x14, 0x00}))
	assert.True(t, IsBinary([]byte("text\x00")))

	// Short printable signatures only count on invalid UTF-8
	for _, text := range []string{"BM25 ranking notes\n", "MZ header layout\n", "SQLite tips\n", "%!PS-Adobe-3.0\n"} {
		assert.False(t, IsBinary([]byte(text)), text)
	}
	assert.True(t, IsBinary([]byte{'B', 'M', 0xF6, 0x7A, 0x01}))
}
