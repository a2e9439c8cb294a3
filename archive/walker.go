// Package archive enumerates style sources kept in directories and zip
// bundles.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"golang.org/x/text/encoding"
)

// WalkFunc is called for each matching file in archive visited by Walk. If
// an error is returned, processing stops.
type WalkFunc func(archive string, file *zip.File) error

// Walk visits all files in the archive which names start with pattern.
// Entries with absolute paths or ".." components make the whole archive
// unacceptable.
func Walk(archive, pattern string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if !f.FileInfo().IsDir() && strings.HasPrefix(name, pattern) {
			if err := walkFn(archive, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) {
		return false
	}
	return !slices.Contains(strings.Split(name, "/"), "..")
}

// Entry is a single source file either on disk or inside zip bundle.
type Entry struct {
	// Name is what entry is known by: file path or bundle path joined with
	// path inside bundle.
	Name string
	// Archive is a bundle path, empty for regular files.
	Archive string
	// Path is a file path or path inside bundle.
	Path string
}

// Open returns entry content.
func (e Entry) Open() (io.ReadCloser, error) {
	if e.Archive == "" {
		return os.Open(e.Path)
	}
	r, err := zip.OpenReader(e.Archive)
	if err != nil {
		return nil, err
	}
	for _, f := range r.File {
		if f.Name != e.Path {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			r.Close()
			return nil, err
		}
		return &entryReader{ReadCloser: rc, r: r}, nil
	}
	r.Close()
	return nil, fmt.Errorf("%s: %w", e.Name, fs.ErrNotExist)
}

type entryReader struct {
	io.ReadCloser
	r *zip.ReadCloser
}

func (er *entryReader) Close() error {
	return multierr.Append(er.ReadCloser.Close(), er.r.Close())
}

// Collect expands src into entries. Source could be:
//
//	path to a file, taken as is
//	path to a directory, all files with one of exts under it recursively,
//	symbolic links are not followed
//	path to zip bundle, all files with one of exts inside
//	path to zip bundle followed by path inside it, matching files under
//	that path
//
// Entries of directory or bundle are in natural order of their names. When
// cp is not nil bundle entry names not marked as UTF-8 are decoded with it.
func Collect(src string, cp encoding.Encoding, exts ...string) ([]Entry, error) {
	matches := func(name string) bool {
		return slices.Contains(exts, strings.ToLower(filepath.Ext(name)))
	}

	var res []Entry
	fi, err := os.Stat(src)
	switch {
	case err == nil && fi.IsDir():
		err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() && matches(p) {
				res = append(res, Entry{Name: p, Path: p})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	case err == nil && strings.EqualFold(filepath.Ext(src), ".zip"):
		if res, err = walkBundle(src, "", cp, matches); err != nil {
			return nil, err
		}
	case err == nil:
		return []Entry{{Name: src, Path: src}}, nil
	default:
		bundle, inner, ok := splitBundlePath(src)
		if !ok {
			return nil, err
		}
		if res, err = walkBundle(bundle, inner, cp, matches); err != nil {
			return nil, err
		}
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("no sources found in %s", src)
	}
	slices.SortFunc(res, func(a, b Entry) int {
		switch {
		case a.Name == b.Name:
			return 0
		case natural.Less(a.Name, b.Name):
			return -1
		}
		return 1
	})
	return res, nil
}

func walkBundle(bundle, inner string, cp encoding.Encoding, matches func(string) bool) ([]Entry, error) {
	var res []Entry
	err := Walk(bundle, "", func(archive string, f *zip.File) error {
		name := f.Name
		if cp != nil && f.NonUTF8 {
			if n, err := cp.NewDecoder().String(name); err == nil {
				name = n
			}
		}
		if !strings.HasPrefix(name, inner) {
			return nil
		}
		// exact name is requested explicitly
		if name == inner || matches(name) {
			res = append(res, Entry{Name: archive + "/" + name, Archive: archive, Path: f.Name})
		}
		return nil
	})
	return res, err
}

// splitBundlePath finds existing zip file at the beginning of src and
// returns it with remaining path inside bundle.
func splitBundlePath(src string) (bundle, inner string, ok bool) {
	norm := filepath.ToSlash(src)
	for i := 0; ; {
		n := strings.Index(strings.ToLower(norm[i:]), ".zip/")
		if n < 0 {
			return "", "", false
		}
		end := i + n + len(".zip")
		if fi, err := os.Stat(filepath.FromSlash(norm[:end])); err == nil && fi.Mode().IsRegular() {
			return filepath.FromSlash(norm[:end]), strings.TrimPrefix(norm[end:], "/"), true
		}
		i = end
	}
}
