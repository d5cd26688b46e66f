// Copyright (C) 2021  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Exists reports whether filename exists.  Errors other than "not exist" are returned.
func Exists(filename string) (bool, error) {
	_, err := os.Stat(filename)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// CopyFile copies src to dst, creating dst's directory if needed.  dst is written under a
// temporary name and renamed in to place, so it never exists half-written.  If dst already
// exists it is left alone and CopyFile reports false.
func CopyFile(src, dst string) (_ bool, err error) {
	if ok, err := Exists(dst); err != nil || ok {
		return false, err
	}
	maybeSetErr := func(_err error) {
		if _err != nil && err == nil {
			err = _err
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return false, err
	}
	defer func() {
		maybeSetErr(in.Close())
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}
	out, err := os.CreateTemp(filepath.Dir(dst), ".copy.*.tmp")
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(out.Name())
		}
	}()
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return false, err
	}
	if err := out.Close(); err != nil {
		return false, err
	}
	if err := os.Chmod(out.Name(), 0o644); err != nil {
		return false, err
	}
	if err := os.Rename(out.Name(), dst); err != nil {
		return false, err
	}
	return true, nil
}
