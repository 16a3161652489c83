package objects

import (
	"image"
	"sync"

	"github.com/cbodonnell/skirmish/client/resources"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/shipimage"
	"github.com/hajimehoshi/ebiten/v2"
)

// ImageSource returns decoded images by texture key.
type ImageSource interface {
	Image(key string) (image.Image, bool)
}

// Textures turns decoded images into GPU images. Images are uploaded
// lazily from Get, which must run on the draw goroutine.
type Textures struct {
	source ImageSource

	lock     sync.Mutex
	images   map[string]*ebiten.Image
	fallback *ebiten.Image
}

func NewTextures(source ImageSource) *Textures {
	return &Textures{
		source: source,
		images: make(map[string]*ebiten.Image),
	}
}

// Get returns the texture for key, or the built-in ship when the key is unknown.
func (t *Textures) Get(key string) *ebiten.Image {
	t.lock.Lock()
	defer t.lock.Unlock()

	if img, ok := t.images[key]; ok {
		return img
	}
	if key != resources.FallbackKey && t.source != nil {
		if decoded, ok := t.source.Image(key); ok {
			img := ebiten.NewImageFromImage(decoded)
			t.images[key] = img
			return img
		}
		log.Trace("Texture %s not loaded, drawing fallback", key)
	}
	if t.fallback == nil {
		t.fallback = ebiten.NewImageFromImage(shipimage.Render(resources.FallbackKey))
	}
	return t.fallback
}

// Release drops every uploaded texture.
func (t *Textures) Release() {
	t.lock.Lock()
	defer t.lock.Unlock()
	for key, img := range t.images {
		img.Deallocate()
		delete(t.images, key)
	}
	if t.fallback != nil {
		t.fallback.Deallocate()
		t.fallback = nil
	}
}
