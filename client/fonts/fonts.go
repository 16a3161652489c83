package fonts

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func init() {
	if err := loadFonts(); err != nil {
		panic(fmt.Sprintf("Failed to load fonts: %v", err))
	}
}

var (
	// TTFSmallFont is used for labels drawn next to ships.
	TTFSmallFont font.Face
	// TTFNormalFont is used for the HUD and menus.
	TTFNormalFont font.Face
	// TTFLargeFont is used for full screen overlays.
	TTFLargeFont font.Face
)

func loadFonts() error {
	const dpi = 72

	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse bold font: %v", err)
	}

	TTFSmallFont = truetype.NewFace(regular, &truetype.Options{
		Size:    12,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	TTFNormalFont = truetype.NewFace(regular, &truetype.Options{
		Size:    18,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	TTFLargeFont = truetype.NewFace(bold, &truetype.Options{
		Size:    36,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})

	return nil
}
