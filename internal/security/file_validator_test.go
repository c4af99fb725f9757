package security

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidator(t *testing.T) {
	validator := NewFileValidator()

	t.Run("ValidGoFile", func(t *testing.T) {
		content := "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"Hello, World!\")\n}\n"
		assert.NoError(t, validator.Validate("main.go", []byte(content)))
	})

	t.Run("ValidHTMLWithFormFeed", func(t *testing.T) {
		assert.NoError(t, validator.Validate("a.html", []byte("<p>\f</p>\r\n")))
	})

	t.Run("EmptyFile", func(t *testing.T) {
		assert.NoError(t, validator.Validate("empty.txt", nil))
	})

	t.Run("ImageAsPHP", func(t *testing.T) {
		png := append([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, []byte("<?php echo 1; ?>")...)
		err := validator.Validate("shell.php", png)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrBinary))
		assert.Contains(t, err.Error(), "PNG image")
	})

	t.Run("NULByte", func(t *testing.T) {
		err := validator.Validate("a.txt", []byte("(a\x00)"))
		assert.ErrorIs(t, err, ErrBinary)
	})

	t.Run("ControlCharacters", func(t *testing.T) {
		data := bytes.Repeat([]byte{0x01, 0x02, 'a'}, 100)
		assert.ErrorIs(t, validator.Validate("a.txt", data), ErrBinary)
	})

	t.Run("OnlyHeaderInspected", func(t *testing.T) {
		v := &FileValidator{HeaderSize: 16}
		data := append(bytes.Repeat([]byte("x"), 16), 0x00)
		assert.NoError(t, v.Validate("a.txt", data))
	})
}
