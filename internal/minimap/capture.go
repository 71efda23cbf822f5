package minimap

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/image/draw"
)

var ErrNoScreenshots = errors.New("no screenshots found")

type Capturer interface {
	Capture(ctx context.Context) (image.Image, error)
}

type BlankCapturer struct{}

func (BlankCapturer) Capture(context.Context) (image.Image, error) {
	return Blank(), nil
}

// Blank returns a black ImageSize x ImageSize frame.
func Blank() image.Image {
	return image.NewRGBA(image.Rect(0, 0, ImageSize, ImageSize))
}

// Region locates the minimap inside a game window: the bottom-right quarter.
func Region(window image.Rectangle) image.Rectangle {
	w, h := window.Dx(), window.Dy()
	x0 := window.Min.X + int(float64(w)*0.75)
	y0 := window.Min.Y + int(float64(h)*0.75)
	return image.Rect(x0, y0, x0+int(float64(w)*0.25), y0+int(float64(h)*0.25))
}

// Resize scales src to a square ImageSize frame.
func Resize(src image.Image) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, ImageSize, ImageSize))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// CropMinimap cuts the minimap region out of a full-window screenshot and
// resizes it. Images without SubImage support are resized whole.
func CropMinimap(screenshot image.Image) image.Image {
	if si, ok := screenshot.(subImager); ok {
		return Resize(si.SubImage(Region(screenshot.Bounds())))
	}
	return Resize(screenshot)
}

// DirCapturer replays screenshots from a directory in name order, looping
// at the end.
type DirCapturer struct {
	paths []string

	mu   sync.Mutex
	next int
}

func NewDirCapturer(dir string) (*DirCapturer, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read capture dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoScreenshots)
	}
	sort.Strings(paths)

	return &DirCapturer{paths: paths}, nil
}

func (c *DirCapturer) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	path := c.paths[c.next]
	c.next = (c.next + 1) % len(c.paths)
	c.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open screenshot: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return CropMinimap(img), nil
}
