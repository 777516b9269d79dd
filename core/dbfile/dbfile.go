// Package dbfile reads and writes compiled metadata database files. Files
// may be stored plain or wrapped in xz or gzip; the wrapper is detected from
// magic bytes on read. Writes are atomic.
package dbfile

import (
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/GlobalPhone/core/errors"
	"github.com/FocuswithJustin/GlobalPhone/internal/validation"
)

// Injectable functions for testing
var (
	osRename           = os.Rename
	gzipNewWriterLevel = gzip.NewWriterLevel
	xzNewWriter        = xz.NewWriter
	gzipNewReader      = gzip.NewReader
	xzNewReader        = xz.NewReader
)

// Compression specifies the wrapper around a database file.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionXZ   Compression = "xz"
	CompressionGzip Compression = "gzip"
)

// ParseCompression maps a flag value to a Compression.
func ParseCompression(name string) (Compression, error) {
	switch Compression(strings.ToLower(name)) {
	case CompressionNone, "":
		return CompressionNone, nil
	case CompressionXZ:
		return CompressionXZ, nil
	case CompressionGzip, "gz":
		return CompressionGzip, nil
	}
	return "", errors.NewUnsupported("compression format", name)
}

// Extension returns the filename suffix conventionally used for c.
func (c Compression) Extension() string {
	switch c {
	case CompressionXZ:
		return ".xz"
	case CompressionGzip:
		return ".gz"
	}
	return ""
}

// DetectCompression reports the wrapper of a file from its first bytes.
func DetectCompression(header []byte) Compression {
	switch validation.DetectFileType(header) {
	case validation.FileTypeXZ:
		return CompressionXZ
	case validation.FileTypeGzip:
		return CompressionGzip
	}
	return CompressionNone
}

// Compress wraps data in c.
func Compress(data []byte, c Compression) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch c {
	case CompressionNone, "":
		return data, nil
	case CompressionGzip:
		w, err = gzipNewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip writer: %w", err)
		}
	case CompressionXZ:
		w, err = xzNewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
	default:
		return nil, errors.NewUnsupported("compression format", string(c))
	}

	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, errors.NewIO("compress", "", err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.NewIO("compress", "", err)
	}
	return buf.Bytes(), nil
}

// Decompress unwraps data according to its magic bytes. Uncompressed data is
// returned as is. Output beyond validation.MaxFileSize is an error.
func Decompress(data []byte) ([]byte, Compression, error) {
	c := DetectCompression(data)

	var r io.Reader
	switch c {
	case CompressionNone:
		return data, c, nil
	case CompressionGzip:
		gz, err := gzipNewReader(bytes.NewReader(data))
		if err != nil {
			return nil, c, errors.NewIO("decompress", "", err)
		}
		defer gz.Close()
		r = gz
	case CompressionXZ:
		xr, err := xzNewReader(bytes.NewReader(data))
		if err != nil {
			return nil, c, errors.NewIO("decompress", "", err)
		}
		r = xr
	}

	out, err := io.ReadAll(io.LimitReader(r, validation.MaxFileSize+1))
	if err != nil {
		return nil, c, errors.NewIO("decompress", "", err)
	}
	if err := validation.ValidateSize(int64(len(out))); err != nil {
		return nil, c, err
	}
	return out, c, nil
}

// ReadFile reads a database file and removes any compression wrapper.
func ReadFile(path string) ([]byte, Compression, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, "", errors.NewIO("stat", path, err)
	}
	if err := validation.ValidateSize(info.Size()); err != nil {
		return nil, "", err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.NewIO("read", path, err)
	}
	data, c, err := Decompress(raw)
	if err != nil {
		return nil, c, errors.Wrapf(err, "read %s", path)
	}
	return data, c, nil
}

// WriteFile compresses data with c and writes it to path atomically through
// a temp file in the same directory.
func WriteFile(path string, data []byte, c Compression) error {
	if err := validation.ValidatePath(path); err != nil {
		return err
	}
	payload, err := Compress(data, c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewIO("create directory", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".phonedb-*")
	if err != nil {
		return errors.NewIO("create temp file", dir, err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(payload); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return errors.NewIO("write", tempPath, err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return errors.NewIO("close", tempPath, err)
	}

	// Rename to final path (atomic on POSIX)
	if err := osRename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return errors.NewIO("rename", path, err)
	}
	return nil
}

// Fingerprint returns the hex BLAKE3-256 digest of data.
func Fingerprint(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
