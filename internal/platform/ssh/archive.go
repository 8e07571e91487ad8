package ssh

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteTar writes the tree rooted at dir to w as a tar archive with paths
// relative to dir. Paths for which skip returns true are left out; skipping
// a directory skips its contents.
func WriteTar(w io.Writer, dir string, skip func(rel string) bool) error {
	tw := tar.NewWriter(w)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if skip != nil && skip(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		var link string
		if info.Mode()&os.ModeSymlink != 0 {
			if link, err = os.Readlink(path); err != nil {
				return err
			}
		}

		hdr, err := tar.FileInfoHeader(info, link)
		if err != nil {
			return err
		}
		hdr.Name = rel
		if d.IsDir() {
			hdr.Name += "/"
		}
		hdr.Uname, hdr.Gname = "", ""
		hdr.Uid, hdr.Gid = 0, 0

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		// #nosec G304 -- walking a local directory chosen by the operator
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		_, err = io.Copy(tw, f)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", dir, err)
	}
	return tw.Close()
}

// Upload streams the tree rooted at localDir into command's stdin. The
// command is expected to unpack a tar archive, for example "tar -xf - -C dir".
func (c *Client) Upload(ctx context.Context, localDir, command string, skip func(rel string) bool) (string, error) {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(WriteTar(pw, localDir, skip))
	}()
	defer func() { _ = pr.Close() }()

	return c.Stream(ctx, command, pr)
}
