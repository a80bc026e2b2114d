package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// URLPrefix is the path under which Local files are served.
const URLPrefix = "/uploads"

// Local keeps files on disk below Root; references look like /uploads/covers/x.jpeg.
type Local struct {
	Root string
}

func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{Root: root}, nil
}

func (l *Local) Save(_ context.Context, f Upload, folder string) (string, error) {
	name := objectName(folder, f)
	dst := filepath.Join(l.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, f.Reader); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("copy upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return URLPrefix + "/" + name, nil
}

// Remove deletes the file behind ref. A missing file is not an error.
func (l *Local) Remove(_ context.Context, ref string) error {
	p, err := l.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) resolve(ref string) (string, error) {
	rel := strings.TrimPrefix(filepath.ToSlash(ref), URLPrefix+"/")
	rel = path.Clean("/" + rel)[1:]
	if rel == "" {
		return "", fmt.Errorf("invalid file reference %q", ref)
	}
	return filepath.Join(l.Root, filepath.FromSlash(rel)), nil
}
