// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gcsfs presents the objects under a Google Cloud Storage
// prefix as a read-only fs.FS, so that result trees uploaded from
// benchmark machines can be walked without copying them locally.
//
// Directories are implied by object names containing "/", as in the
// gsutil tool.
package gcsfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// FS is a read-only file system backed by a bucket.
type FS struct {
	ctx    context.Context
	bucket *storage.BucketHandle
	prefix string // no leading or trailing slash
}

var (
	_ fs.ReadDirFS = (*FS)(nil)
	_ fs.StatFS    = (*FS)(nil)
)

// New returns an FS rooted at prefix in bucket. All requests are
// made with ctx.
func New(ctx context.Context, bucket *storage.BucketHandle, prefix string) *FS {
	return &FS{ctx, bucket, strings.Trim(prefix, "/")}
}

// ParseURL splits a URL of the form gs://bucket/prefix into its
// bucket and prefix. The prefix may be empty.
func ParseURL(s string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(s, "gs://")
	if rest == s {
		return "", "", fmt.Errorf("%q is not a gs:// URL", s)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%q has no bucket name", s)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// key returns the object name for the fs path name.
func (f *FS) key(name string) string {
	if name == "." {
		return f.prefix
	}
	if f.prefix == "" {
		return name
	}
	return f.prefix + "/" + name
}

// dirPrefix returns the listing prefix for the directory key.
func dirPrefix(key string) string {
	if key == "" {
		return ""
	}
	return key + "/"
}

func (f *FS) check(op, name string) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return nil
}

// Open opens the object or implied directory name.
func (f *FS) Open(name string) (fs.File, error) {
	if err := f.check("open", name); err != nil {
		return nil, err
	}
	fi, err := f.stat(name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	if fi.IsDir() {
		return &dir{f: f, name: name, info: fi}, nil
	}
	r, err := f.bucket.Object(f.key(name)).NewReader(f.ctx)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: mapErr(err)}
	}
	return &file{r, fi}, nil
}

// Stat returns information about the object or implied directory name.
func (f *FS) Stat(name string) (fs.FileInfo, error) {
	if err := f.check("stat", name); err != nil {
		return nil, err
	}
	fi, err := f.stat(name)
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: err}
	}
	return fi, nil
}

func (f *FS) stat(name string) (*fileInfo, error) {
	base := path.Base(name)
	if name != "." {
		attrs, err := f.bucket.Object(f.key(name)).Attrs(f.ctx)
		if err == nil {
			return &fileInfo{name: base, size: attrs.Size, modTime: attrs.Updated}, nil
		}
		if !errors.Is(err, storage.ErrObjectNotExist) {
			return nil, err
		}
	}
	// Not an object. It is a directory if anything lives under it.
	if name == "." && f.prefix == "" {
		return &fileInfo{name: ".", dir: true}, nil
	}
	it := f.bucket.Objects(f.ctx, &storage.Query{Prefix: dirPrefix(f.key(name))})
	if _, err := it.Next(); err == iterator.Done {
		return nil, fs.ErrNotExist
	} else if err != nil {
		return nil, err
	}
	return &fileInfo{name: base, dir: true}, nil
}

// ReadDir lists the directory name, sorted by file name.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := f.check("readdir", name); err != nil {
		return nil, err
	}
	ents, err := f.readDir(name)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return ents, nil
}

func (f *FS) readDir(name string) ([]fs.DirEntry, error) {
	prefix := dirPrefix(f.key(name))
	it := f.bucket.Objects(f.ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	var ents []fs.DirEntry
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if e := entryFor(prefix, attrs); e != nil {
			ents = append(ents, e)
		}
	}
	if len(ents) == 0 && name != "." {
		return nil, fs.ErrNotExist
	}
	sort.Slice(ents, func(i, j int) bool { return ents[i].Name() < ents[j].Name() })
	return ents, nil
}

// entryFor converts one listing result under prefix into a directory
// entry. It returns nil for the placeholder object some tools create
// to mark an empty directory.
func entryFor(prefix string, attrs *storage.ObjectAttrs) fs.DirEntry {
	if attrs.Prefix != "" {
		n := strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, prefix), "/")
		if n == "" {
			return nil
		}
		return fs.FileInfoToDirEntry(&fileInfo{name: n, dir: true})
	}
	n := strings.TrimPrefix(attrs.Name, prefix)
	if n == "" {
		return nil
	}
	return fs.FileInfoToDirEntry(&fileInfo{name: n, size: attrs.Size, modTime: attrs.Updated})
}

func mapErr(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fs.ErrNotExist
	}
	return err
}

type fileInfo struct {
	name    string
	size    int64
	modTime time.Time
	dir     bool
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) ModTime() time.Time { return fi.modTime }
func (fi *fileInfo) IsDir() bool        { return fi.dir }
func (fi *fileInfo) Sys() interface{}   { return nil }

func (fi *fileInfo) Mode() fs.FileMode {
	if fi.dir {
		return fs.ModeDir | 0555
	}
	return 0444
}

type file struct {
	r    *storage.Reader
	info *fileInfo
}

func (f *file) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *file) Read(p []byte) (int, error) { return f.r.Read(p) }
func (f *file) Close() error               { return f.r.Close() }

type dir struct {
	f    *FS
	name string
	info *fileInfo
	ents []fs.DirEntry // nil until the first ReadDir
}

func (d *dir) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *dir) Close() error               { return nil }

func (d *dir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.name, Err: errors.New("is a directory")}
}

// ReadDir implements fs.ReadDirFile.
func (d *dir) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.ents == nil {
		ents, err := d.f.readDir(d.name)
		if err != nil {
			return nil, &fs.PathError{Op: "readdir", Path: d.name, Err: err}
		}
		d.ents = append([]fs.DirEntry{}, ents...)
	}
	if n <= 0 {
		ents := d.ents
		d.ents = d.ents[len(d.ents):]
		return ents, nil
	}
	if len(d.ents) == 0 {
		return nil, io.EOF
	}
	if n > len(d.ents) {
		n = len(d.ents)
	}
	ents := d.ents[:n]
	d.ents = d.ents[n:]
	return ents, nil
}
