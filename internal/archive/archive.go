// Package archive packs a directory tree into a gzip-compressed tarball and
// unpacks it again under a root directory.
package archive

import (
	"archive/tar"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bianoble/provision/internal/sandbox"
	"github.com/klauspost/compress/gzip"
)

// Result describes a packed or unpacked tarball.
type Result struct {
	SHA256  string // hex digest of the compressed tarball (Pack only)
	Size    int64  // compressed size in bytes (Pack only)
	Entries int
}

// Pack writes root/dir as a tar+gzip stream to dst. Entry names are relative
// to root so Unpack(dst, root) recreates dir in place. Directories, regular
// files and symlinks are stored; symlinks are not followed. Files linked more
// than once are stored as hardlink entries after the first occurrence.
func Pack(ctx context.Context, dst, root, dir string) (*Result, error) {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("creating tarball %s: %w", dst, err)
	}

	success := false
	defer func() {
		if !success {
			_ = f.Close()
			_ = os.Remove(dst)
		}
	}()

	h := sha256.New()
	cw := &countingWriter{w: io.MultiWriter(f, h)}
	gz, err := gzip.NewWriterLevel(cw, gzip.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("creating gzip writer: %w", err)
	}
	tw := tar.NewWriter(gz)

	entries, err := writeTree(ctx, tw, root, dir)
	if err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("closing tar stream: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip stream: %w", err)
	}
	if err := f.Sync(); err != nil {
		return nil, fmt.Errorf("syncing tarball: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing tarball: %w", err)
	}

	success = true
	return &Result{
		SHA256:  hex.EncodeToString(h.Sum(nil)),
		Size:    cw.n,
		Entries: entries,
	}, nil
}

type inode struct {
	dev, ino uint64
}

func writeTree(ctx context.Context, tw *tar.Writer, root, dir string) (int, error) {
	start := filepath.Join(root, dir)
	if _, err := os.Lstat(start); err != nil {
		return 0, fmt.Errorf("reading %s: %w", start, err)
	}

	entries := 0
	links := make(map[inode]string)
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&fs.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return fmt.Errorf("reading symlink %s: %w", path, err)
			}
		}

		if !info.IsDir() && !info.Mode().IsRegular() && link == "" {
			return fmt.Errorf("unsupported file type %s for %s", info.Mode().Type(), path)
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return fmt.Errorf("building header for %s: %w", path, err)
		}
		hdr.Name = filepath.ToSlash(rel)
		if info.IsDir() {
			hdr.Name += "/"
		}

		if info.Mode().IsRegular() {
			if id, ok := fileID(info); ok {
				if first, seen := links[id]; seen {
					hdr.Typeflag = tar.TypeLink
					hdr.Linkname = first
					hdr.Size = 0
				} else {
					links[id] = hdr.Name
				}
			}
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing header for %s: %w", rel, err)
		}
		entries++

		if hdr.Typeflag != tar.TypeReg {
			return nil
		}
		return copyFile(tw, path)
	})
	if err != nil {
		return 0, fmt.Errorf("packing %s: %w", start, err)
	}
	return entries, nil
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copying %s: %w", path, err)
	}
	return nil
}

// Unpack extracts the tarball at src under root. Every entry must resolve
// inside root; a corrupt stream or an escaping entry aborts extraction.
// Modification times of files and directories are restored.
func Unpack(ctx context.Context, src, root string) (*Result, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("opening tarball %s: %w", src, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading gzip header of %s: %w", src, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	entries := 0
	var dirs []*tar.Header
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", src, err)
		}

		if err := extractEntry(tr, hdr, root); err != nil {
			return nil, err
		}
		if hdr.Typeflag == tar.TypeDir {
			dirs = append(dirs, hdr)
		}
		entries++
	}

	// Children were written after their directories, so stamp deepest first.
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := restoreTimes(root, dirs[i]); err != nil {
			return nil, err
		}
	}

	return &Result{Entries: entries}, nil
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, root string) error {
	target, err := sandbox.Resolve(root, filepath.FromSlash(hdr.Name))
	if err != nil {
		return fmt.Errorf("entry %s: %w", hdr.Name, err)
	}
	mode := fs.FileMode(hdr.Mode).Perm()

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := os.MkdirAll(target, mode|0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", hdr.Name, err)
		}

	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("creating parent of %s: %w", hdr.Name, err)
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
		if err != nil {
			return fmt.Errorf("creating %s: %w", hdr.Name, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			_ = out.Close()
			return fmt.Errorf("writing %s: %w", hdr.Name, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", hdr.Name, err)
		}
		return restoreTimes(root, hdr)

	case tar.TypeLink:
		source, err := sandbox.Resolve(root, filepath.FromSlash(hdr.Linkname))
		if err != nil {
			return fmt.Errorf("entry %s: link target: %w", hdr.Name, err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("creating parent of %s: %w", hdr.Name, err)
		}
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("replacing %s: %w", hdr.Name, err)
		}
		if err := os.Link(source, target); err != nil {
			return fmt.Errorf("creating hardlink %s: %w", hdr.Name, err)
		}

	case tar.TypeSymlink:
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("creating parent of %s: %w", hdr.Name, err)
		}
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("replacing %s: %w", hdr.Name, err)
		}
		if err := os.Symlink(hdr.Linkname, target); err != nil {
			return fmt.Errorf("creating symlink %s: %w", hdr.Name, err)
		}

	default:
		return fmt.Errorf("entry %s: unsupported type %q", hdr.Name, hdr.Typeflag)
	}
	return nil
}

func restoreTimes(root string, hdr *tar.Header) error {
	if hdr.ModTime.IsZero() {
		return nil
	}
	target, err := sandbox.Resolve(root, filepath.FromSlash(hdr.Name))
	if err != nil {
		return fmt.Errorf("entry %s: %w", hdr.Name, err)
	}
	if err := os.Chtimes(target, hdr.ModTime, hdr.ModTime); err != nil {
		return fmt.Errorf("setting times on %s: %w", hdr.Name, err)
	}
	return nil
}

// FileSHA256 returns the hex SHA256 and size of the file at path.
func FileSHA256(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
