package security

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrBinary is returned for content that is not text.
var ErrBinary = errors.New("file appears to be binary")

// FileValidator rejects files that carry a source extension but hold
// binary data, before they reach a lexer.
type FileValidator struct {
	HeaderSize int // Bytes inspected from the start of the content
}

func NewFileValidator() *FileValidator {
	return &FileValidator{HeaderSize: 8 * 1024}
}

// signature is a file format identified by its magic bytes.
type signature struct {
	name  string
	magic []byte
}

var signatures = []signature{
	{"PNG image", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"JPEG image", []byte{0xFF, 0xD8, 0xFF}},
	{"GIF image", []byte("GIF89a")},
	{"GIF image", []byte("GIF87a")},
	{"PDF document", []byte("%PDF-")},
	{"zip archive", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"gzip archive", []byte{0x1F, 0x8B}},
	{"ELF executable", []byte{0x7F, 'E', 'L', 'F'}},
}

// Validate inspects the head of content. path is used in messages only.
func (fv *FileValidator) Validate(path string, content []byte) error {
	header := content
	if fv.HeaderSize > 0 && len(header) > fv.HeaderSize {
		header = header[:fv.HeaderSize]
	}

	if err := fv.checkMagicBytes(path, header); err != nil {
		return err
	}
	if fv.isBinaryData(header) {
		return ErrBinary
	}
	return nil
}

// checkMagicBytes rejects content that starts with a known binary signature
func (fv *FileValidator) checkMagicBytes(path string, header []byte) error {
	for _, sig := range signatures {
		if bytes.HasPrefix(header, sig.magic) {
			return fmt.Errorf("%w: %s holds a %s", ErrBinary, path, sig.name)
		}
	}
	return nil
}

// isBinaryData checks if data contains binary content
func (fv *FileValidator) isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	// Control characters (0-31 except tab, LF, VT, FF, CR) and DEL
	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}

	// More than 30% non-printable is binary
	ratio := float64(nonPrintable) / float64(len(data))
	return ratio > 0.3
}
