// Package fileval rejects files that are not worth parsing: oversized
// files, binary files and files that are not UTF-8 text.
package fileval

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// Without a size limit only the first MB is scanned.
const defaultReadLimit = 1 << 20

// ErrInvalidFile is matched by every validation error.
var ErrInvalidFile = errors.New("invalid source file")

type FileTooLargeError struct {
	Path          string
	Size, MaxSize int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large (%d > %d bytes); increase [file-validation] max-file-size in .sentinel.toml to override",
		e.Size, e.MaxSize)
}

func (e *FileTooLargeError) Unwrap() error { return ErrInvalidFile }

// EncodingError reports content that is not UTF-8 text. Binary is set when
// the content holds a NUL byte.
type EncodingError struct {
	Path   string
	Binary bool
}

func (e *EncodingError) Error() string {
	if e.Binary {
		return "file contains NUL bytes and does not look like source text"
	}
	return "file does not appear to be valid UTF-8 text"
}

func (e *EncodingError) Unwrap() error { return ErrInvalidFile }

// ValidateFile checks the file at path. The size is checked from Stat before
// anything is read, then at most maxSize bytes are scanned.
func ValidateFile(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if err := checkSize(path, info.Size(), maxSize); err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	limit := maxSize
	if limit <= 0 {
		limit = defaultReadLimit
	}
	return checkEncoding(path, io.LimitReader(f, limit), info.Size() > limit)
}

// Validate checks content already in memory, such as an unsaved buffer.
func Validate(path string, content []byte, maxSize int64) error {
	if err := checkSize(path, int64(len(content)), maxSize); err != nil {
		return err
	}
	return checkEncoding(path, bytes.NewReader(content), false)
}

func checkSize(path string, size, maxSize int64) error {
	if maxSize > 0 && size > maxSize {
		return &FileTooLargeError{Path: path, Size: size, MaxSize: maxSize}
	}
	return nil
}

func checkEncoding(path string, r io.Reader, partial bool) error {
	enc, err := scan(r, partial)
	if err != nil || enc == encodingText {
		return err
	}
	return &EncodingError{Path: path, Binary: enc == encodingBinary}
}
