// Package validation checks user-supplied paths and sniffs the type of
// metadata database files before they are read.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
)

// Limits on input sizes (CWE-400).
const (
	// MaxFileSize is the maximum allowed file size, compressed or not (256 MB).
	MaxFileSize = 256 << 20
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrFileTooLarge     = errors.New("file too large")
)

// ValidatePath checks a path for dangerous patterns, length limits and
// invalid characters.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}

	return nil
}

// ValidateSize rejects sizes above MaxFileSize.
func ValidateSize(size int64) error {
	if size > MaxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, MaxFileSize)
	}
	return nil
}

// FileType represents a detected file type.
type FileType string

const (
	// Compression wrappers
	FileTypeGzip FileType = "gzip"
	FileTypeXZ   FileType = "xz"

	// Binary formats
	FileTypeSQLite FileType = "sqlite"

	// Text formats
	FileTypeXML  FileType = "xml"
	FileTypeJSON FileType = "json"
	FileTypeYAML FileType = "yaml"
	FileTypeText FileType = "text"

	// Unknown
	FileTypeUnknown FileType = "unknown"
)

// Compressed reports whether t is a compression wrapper.
func (t FileType) Compressed() bool {
	return t == FileTypeGzip || t == FileTypeXZ
}

// HeaderSize is the number of leading bytes DetectFileType needs.
const HeaderSize = 512

// magicBytes defines magic byte signatures for file type detection.
var magicBytes = []struct {
	fileType FileType
	magic    []byte
}{
	{FileTypeGzip, []byte{0x1f, 0x8b}},
	{FileTypeXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{FileTypeSQLite, []byte("SQLite format 3\x00")},
}

// DetectFileType identifies buf, the start of a file, from its magic bytes.
// Text is classified by its first significant byte: '<' is XML, '[' or '{'
// is JSON. Other text reports FileTypeText.
func DetectFileType(buf []byte) FileType {
	for _, sig := range magicBytes {
		if bytes.HasPrefix(buf, sig.magic) {
			return sig.fileType
		}
	}
	if !isLikelyText(buf) {
		return FileTypeUnknown
	}
	trimmed := bytes.TrimLeft(buf, " \t\r\n\uFEFF")
	switch {
	case len(trimmed) == 0:
		return FileTypeText
	case trimmed[0] == '<':
		return FileTypeXML
	case trimmed[0] == '[' || trimmed[0] == '{':
		return FileTypeJSON
	}
	return FileTypeText
}

// FileTypeFromExtension determines the expected file type from a filename.
// For compressed files it reports the compression wrapper.
func FileTypeFromExtension(filename string) FileType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xz":
		return FileTypeXZ
	case ".gz", ".gzip":
		return FileTypeGzip
	case ".sqlite", ".sqlite3", ".db":
		return FileTypeSQLite
	case ".xml":
		return FileTypeXML
	case ".json":
		return FileTypeJSON
	case ".yaml", ".yml":
		return FileTypeYAML
	case ".txt":
		return FileTypeText
	default:
		return FileTypeUnknown
	}
}

// ValidateFileType reads the header of reader and checks it against the type
// implied by filename. It returns the detected type, or the expected type
// when detection cannot tell text formats apart.
func ValidateFileType(reader io.Reader, filename string) (FileType, error) {
	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	detected := DetectFileType(buf)
	expected := FileTypeFromExtension(filename)

	switch {
	case detected == expected:
		return detected, nil
	case expected == FileTypeUnknown:
		return detected, nil
	case detected == FileTypeText && !expected.Compressed() && expected != FileTypeSQLite:
		// YAML and loosely formatted text only show up as plain text.
		return expected, nil
	case expected == FileTypeYAML && detected == FileTypeJSON:
		// JSON is a subset of YAML.
		return expected, nil
	}
	return FileTypeUnknown, fmt.Errorf("file type mismatch: extension suggests %s but content is %s", expected, detected)
}

// isLikelyText checks if the buffer contains likely text content.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}

	// Null bytes are a strong indicator of binary content
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable := 0
	control := 0
	for _, b := range buf {
		if b >= 0x20 && b <= 0x7e || b == '\t' || b == '\n' || b == '\r' {
			printable++
		} else if b < 0x20 {
			control++
		}
		// UTF-8 continuation and start bytes are neutral
	}

	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
