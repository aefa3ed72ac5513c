// Package archive reads parts of zip containers such as OOXML packages.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// MaxPartSize limits decompressed size of a single entry.
const MaxPartSize = 64 << 20

var (
	ErrUnsafePath   = errors.New("unsafe path (absolute or contains path traversal)")
	ErrPartTooLarge = errors.New("entry is too large")
)

// SkipFunc reports whether entry should not be visited.
type SkipFunc func(name string) bool

// WalkFunc is called for each visited file entry with its fully read
// content. If an error is returned, processing stops.
type WalkFunc func(name string, data []byte) error

// Walk visits all file entries of the archive not rejected by skip in
// archive order. Entries with path traversal components ("..") or absolute
// paths make the whole archive unacceptable.
func Walk(archive string, skip SkipFunc, walkFn WalkFunc) error {

	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: %w", name, ErrUnsafePath)
		}
		if f.FileInfo().IsDir() || (skip != nil && skip(name)) {
			continue
		}
		data, err := readFile(f)
		if err != nil {
			return fmt.Errorf("zip entry %q: %w", name, err)
		}
		if err := walkFn(name, data); err != nil {
			return err
		}
	}
	return nil
}

func readFile(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > MaxPartSize {
		return nil, ErrPartTooLarge
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxPartSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxPartSize {
		return nil, ErrPartTooLarge
	}
	return data, nil
}

// isSafePath returns false for names that could escape package root:
// absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
