package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrBinary marks content that is not text
	ErrBinary = errors.New("binary content")
	// ErrUndecodable marks text that is neither UTF-8 nor the fallback charset
	ErrUndecodable = errors.New("undecodable text")
)

// sniffLen is how much of the head is checked for NUL bytes
const sniffLen = 8000

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decoder turns raw file bytes into text
type Decoder struct {
	fallback     encoding.Encoding
	fallbackName string
}

// NewDecoder creates a decoder. fallback is an optional WHATWG charset label
// (e.g. "windows-1252", "gbk") tried when content is not valid UTF-8.
func NewDecoder(fallback string) (*Decoder, error) {
	d := &Decoder{}
	if fallback == "" {
		return d, nil
	}

	enc, err := htmlindex.Get(fallback)
	if err != nil {
		return nil, fmt.Errorf("unknown fallback encoding %q: %w", fallback, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		name = fallback
	}
	d.fallback = enc
	d.fallbackName = name
	return d, nil
}

// Decode returns the text of data and the name of the encoding used.
// Byte order marks are honoured and stripped.
func (d *Decoder) Decode(data []byte) (string, string, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
		if !utf8.Valid(data) {
			return "", "", fmt.Errorf("%w: invalid UTF-8 after byte order mark", ErrUndecodable)
		}
		return string(data), "utf-8", nil
	case bytes.HasPrefix(data, bomUTF16LE):
		return decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), data, "utf-16le")
	case bytes.HasPrefix(data, bomUTF16BE):
		return decodeWith(unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), data, "utf-16be")
	}

	if IsBinary(data) {
		return "", "", ErrBinary
	}

	if utf8.Valid(data) {
		return string(data), "utf-8", nil
	}

	if d.fallback != nil {
		return decodeWith(d.fallback, data, d.fallbackName)
	}

	return "", "", fmt.Errorf("%w: content is not valid UTF-8", ErrUndecodable)
}

// IsBinary reports whether data looks like a binary file: a NUL byte in the
// head, or a known binary signature on data that is not valid UTF-8. Several
// signatures are two or four printable bytes ("BM", "MZ", "%!"), so a match
// alone never rejects valid UTF-8 text.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}
	if utf8.Valid(data) {
		return false
	}
	kind, _ := filetype.Match(data)
	return kind != filetype.Unknown
}

func decodeWith(enc encoding.Encoding, data []byte, name string) (string, string, error) {
	reader := transform.NewReader(bytes.NewReader(data), enc.NewDecoder())
	out, err := io.ReadAll(reader)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrUndecodable, name, err)
	}
	return string(out), name, nil
}
