package media

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
)

type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// Asset is one loaded clip resource. Placeholder is set when loading
// failed and a neutral stand-in is used instead.
type Asset struct {
	Path        string
	Kind        Kind
	Size        int64
	Placeholder bool
	Image       image.Image
	Audio       []byte
}

var placeholderGray = color.RGBA{R: 128, G: 128, B: 128, A: 255}

// PlaceholderImage returns a uniform gray image of the given size.
func PlaceholderImage(width, height int) *image.RGBA {
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderGray), image.Point{}, draw.Src)
	return img
}

// Cache holds loaded assets by path.
type Cache struct {
	mu     sync.RWMutex
	assets map[string]*Asset
}

func NewCache() *Cache {
	return &Cache{assets: make(map[string]*Asset)}
}

func (c *Cache) Put(a *Asset) {
	c.mu.Lock()
	c.assets[a.Path] = a
	c.mu.Unlock()
}

func (c *Cache) Get(path string) (*Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assets[path]
	return a, ok
}

// Image returns the decoded image for path, which is the gray placeholder
// when loading failed. It returns nil when path was never loaded.
func (c *Cache) Image(path string) image.Image {
	a, ok := c.Get(path)
	if !ok {
		return nil
	}
	return a.Image
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.assets)
}

func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.assets, path)
	c.mu.Unlock()
}
