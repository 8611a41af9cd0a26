/*
Copyright © 2024 the TwinMAP authors.
This file is part of TwinMAP.

TwinMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TwinMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TwinMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob" // mem:// buckets
	"gocloud.dev/gcerrors"
)

// Sink collects the artifacts of a request in memory so that they are
// written together, or not at all.
type Sink struct {
	names []string
	files map[string]*bytes.Buffer
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{files: make(map[string]*bytes.Buffer)}
}

// Create returns a buffer for the artifact with the given name,
// replacing any artifact already staged under that name.
func (s *Sink) Create(name string) *bytes.Buffer {
	b := new(bytes.Buffer)
	if _, ok := s.files[name]; !ok {
		s.names = append(s.names, name)
	}
	s.files[name] = b
	return b
}

// Names returns the names of the staged artifacts in creation order.
func (s *Sink) Names() []string { return append([]string(nil), s.names...) }

// Bytes returns the content of a staged artifact.
func (s *Sink) Bytes(name string) ([]byte, bool) {
	b, ok := s.files[name]
	if !ok {
		return nil, false
	}
	return b.Bytes(), true
}

// Commit writes every staged artifact to bucket under prefix. If a
// write fails, the bucket is restored as by Undo.
func (s *Sink) Commit(ctx context.Context, bucket *blob.Bucket, prefix string) (*Commit, error) {
	c := &Commit{bucket: bucket, prev: make(map[string][]byte)}
	for _, name := range s.names {
		key := path.Join(prefix, name)
		old, err := bucket.ReadAll(ctx, key)
		switch {
		case err == nil:
			c.prev[key] = old
		case gcerrors.Code(err) != gcerrors.NotFound:
			c.Undo(ctx)
			return nil, fmt.Errorf("export: reading %s: %w", key, err)
		}
		c.keys = append(c.keys, key)
		opts := &blob.WriterOptions{ContentType: contentType(name)}
		if err := bucket.WriteAll(ctx, key, s.files[name].Bytes(), opts); err != nil {
			c.Undo(ctx)
			return nil, fmt.Errorf("export: writing %s: %w", key, err)
		}
	}
	return c, nil
}

// Commit is a set of artifacts written to a bucket.
type Commit struct {
	bucket *blob.Bucket
	keys   []string
	// prev holds the earlier content of keys that were overwritten.
	prev map[string][]byte
}

// Keys returns the keys written, in order.
func (c *Commit) Keys() []string { return append([]string(nil), c.keys...) }

// Undo deletes the keys the commit created and restores the ones it
// overwrote. It runs even if ctx is done.
func (c *Commit) Undo(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for i := len(c.keys) - 1; i >= 0; i-- {
		key := c.keys[i]
		if old, ok := c.prev[key]; ok {
			opts := &blob.WriterOptions{ContentType: contentType(key)}
			if err := c.bucket.WriteAll(ctx, key, old, opts); err != nil {
				errs = append(errs, fmt.Errorf("export: restoring %s: %w", key, err))
			}
			continue
		}
		if err := c.bucket.Delete(ctx, key); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
			errs = append(errs, fmt.Errorf("export: removing %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func contentType(name string) string {
	switch path.Ext(name) {
	case ".json":
		return "application/json"
	case ".gltf":
		return "model/gltf+json"
	case ".wrl":
		return "model/vrml"
	case ".obj":
		return "text/plain"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// OpenBucket opens the bucket artifacts are written to: the bucket at
// url if it is set, and otherwise the local directory dir.
func OpenBucket(ctx context.Context, url, dir string) (*blob.Bucket, error) {
	if url != "" {
		b, err := blob.OpenBucket(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("export: opening bucket: %w", err)
		}
		return b, nil
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	b, err := fileblob.OpenBucket(dir, &fileblob.Options{Metadata: fileblob.MetadataDontWrite})
	if err != nil {
		return nil, fmt.Errorf("export: opening output directory: %w", err)
	}
	return b, nil
}
