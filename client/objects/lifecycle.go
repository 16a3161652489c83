package objects

import "github.com/hajimehoshi/ebiten/v2"

// Lifecycle is driven by the scene: Init once when attached, Update every
// tick, Draw every frame and Destroy once when detached.
type Lifecycle interface {
	Init() error
	Destroy() error
	Update() error
	Draw(screen *ebiten.Image)
}
