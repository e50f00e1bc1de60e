// Package media stores uploaded images under the static directory after
// normalising them to a fixed thumbnail size.
package media

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/iliyamo/easyshop/internal/utils"
)

// Thumbnail edge in pixels. Images are scaled to Size×Size without
// preserving aspect ratio.
const Size = 200

// MaxDimension bounds the declared width and height of an upload, checked
// before the pixels are decoded.
const MaxDimension = 8000

// nameBytes is the amount of randomness in a generated filename.
const nameBytes = 10

var (
	// ErrExtension is returned for files outside the png/jpg/jpeg allow-list.
	ErrExtension = errors.New("invalid file extension")
	// ErrImage is returned when the payload does not decode as an image.
	ErrImage = errors.New("invalid image file")
)

var allowed = map[string]bool{"png": true, "jpg": true, "jpeg": true}

// Store writes images into Dir.
type Store struct {
	Dir string
}

func NewStore(dir string) *Store { return &Store{Dir: dir} }

// Extension returns the lower-cased extension of filename without the dot,
// or ErrExtension if it is not allowed.
func Extension(filename string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if !allowed[ext] {
		return "", ErrExtension
	}
	return ext, nil
}

// Save validates the extension of filename, writes src to a freshly named
// file, then rewrites that file as a Size×Size image. It returns the bare
// generated filename. Nothing is written when the extension is rejected, and
// the file is removed again if it does not decode.
func (s *Store) Save(filename string, src io.Reader) (string, error) {
	ext, err := Extension(filename)
	if err != nil {
		return "", err
	}
	token, err := utils.RandomHex(nameBytes)
	if err != nil {
		return "", fmt.Errorf("generate filename: %w", err)
	}
	name := token + "." + ext
	path := filepath.Join(s.Dir, name)

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", s.Dir, err)
	}
	if err := writeFile(path, src); err != nil {
		return "", err
	}
	if err := normalise(path, ext); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return name, nil
}

// Path returns the on-disk location of a stored file.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, filepath.Base(name))
}

func writeFile(path string, src io.Reader) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func normalise(path, ext string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()
	cfg, _, err := image.DecodeConfig(in)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxDimension || cfg.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrImage, cfg.Width, cfg.Height, MaxDimension)
	}
	if _, err := in.Seek(0, io.SeekStart); err != nil {
		return err
	}
	src, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImage, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	switch ext {
	case "png":
		err = png.Encode(out, dst)
	default:
		err = jpeg.Encode(out, dst, &jpeg.Options{Quality: 90})
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
