package app

import (
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Capture traces one frame into the readback buffer and writes it to the next
// output file name, upscaled by the output scale. Returns the written path.
func (a *App) Capture() (string, error) {
	a.Profiler.BeginScope(ScopeCapture)
	defer a.Profiler.EndScope(ScopeCapture)

	out := a.Scene.Output
	if err := a.BufferManager.SetupReadback(uint32(out.Width), uint32(out.Height)); err != nil {
		return "", err
	}

	encoder, err := a.Device.CreateCommandEncoder(nil)
	if err != nil {
		return "", errors.Wrap(err, "creating capture encoder")
	}
	if err := a.encodeTrace(encoder); err != nil {
		return "", err
	}
	a.BufferManager.EncodeReadback(encoder, a.StorageTexture)
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return "", errors.Wrap(err, "finishing capture encoder")
	}
	a.Queue.Submit(cmd)

	img, err := a.BufferManager.ReadPixels()
	if err != nil {
		return "", err
	}

	a.CaptureCount++
	path := out.FileName(a.CaptureCount)
	if err := writeImage(path, scaleImage(img, out.Scale)); err != nil {
		return "", err
	}
	a.Logger.Infof("captured %s", path)
	return path, nil
}

// scaleImage resamples src to scale times its size.
func scaleImage(src *image.RGBA, scale int) image.Image {
	if scale <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// writeImage picks the encoder from the file extension.
func writeImage(path string, img image.Image) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	var encode func(f *os.File) error
	switch ext {
	case ".png":
		encode = func(f *os.File) error { return png.Encode(f, img) }
	case ".jpg", ".jpeg":
		encode = func(f *os.File) error { return jpeg.Encode(f, img, &jpeg.Options{Quality: 95}) }
	case ".bmp":
		encode = func(f *os.File) error { return bmp.Encode(f, img) }
	case ".tif", ".tiff":
		encode = func(f *os.File) error { return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate}) }
	default:
		return errors.Errorf("unsupported image format %q", ext)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "creating capture directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating capture file")
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing capture file")
		}
	}()
	return errors.Wrapf(encode(f), "encoding %s", path)
}
