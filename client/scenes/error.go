package scenes

import "github.com/cbodonnell/skirmish/client/objects"

// ErrorScene replaces the game when the connection is lost.
type ErrorScene struct {
	*BaseScene
}

var _ Scene = &ErrorScene{}

func NewErrorScene(msg string) (Scene, error) {
	overlay := objects.NewTextOverlayObject("overlay-error", msg, "Press enter to return to the menu")
	return &ErrorScene{
		BaseScene: NewBaseScene(overlay),
	}, nil
}
