package scenes

import (
	"fmt"

	"github.com/cbodonnell/skirmish/client/objects"
)

type GameOverScene struct {
	*BaseScene
}

var _ Scene = &GameOverScene{}

// NewGameOverScene shows the final kill count of the local ship.
func NewGameOverScene(kills int) (Scene, error) {
	hint := fmt.Sprintf("%d kills. Press enter to play again", kills)
	if kills == 1 {
		hint = "1 kill. Press enter to play again"
	}
	return &GameOverScene{
		BaseScene: NewBaseScene(objects.NewTextOverlayObject("overlay-gameover", "Game Over", hint)),
	}, nil
}
