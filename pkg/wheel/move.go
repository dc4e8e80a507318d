package wheel

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/rotisserie/eris"
)

// Move the file at `src` into `dstDir`, keeping its name and replacing any file already there. Returns the new path.
func Move(src, dstDir string) (string, error) {
	dst := filepath.Join(dstDir, filepath.Base(src))

	err := os.Rename(src, dst)
	if err == nil {
		return dst, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", eris.Wrapf(err, "failed to move '%s' to '%s'", src, dst)
	}

	// Different filesystems: copy next to the destination, then swap it in.
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	if err := os.Remove(src); err != nil {
		return "", eris.Wrapf(err, "failed to remove '%s' after copying it", src)
	}

	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "failed to open '%s'", src)
	}
	defer in.Close()

	tmpFile, err := os.CreateTemp(filepath.Dir(dst), ".wheelhouse_tmp_")
	if err != nil {
		return eris.Wrap(err, "failed to create temporary file")
	}
	tmp := tmpFile.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := io.Copy(tmpFile, in); err != nil {
		_ = tmpFile.Close()
		return eris.Wrapf(err, "failed to copy '%s'", src)
	}
	if err := tmpFile.Close(); err != nil {
		return eris.Wrap(err, "failed to close temporary file")
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return eris.Wrap(err, "failed to set wheel permissions")
	}

	if err := os.Rename(tmp, dst); err != nil {
		return eris.Wrapf(err, "failed to replace '%s'", dst)
	}

	return nil
}
