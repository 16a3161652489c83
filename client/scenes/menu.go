package scenes

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/cbodonnell/skirmish/client/fonts"
	"github.com/cbodonnell/skirmish/client/objects"
	"github.com/cbodonnell/skirmish/client/ui"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
)

type MenuScene struct {
	*BaseScene

	onStart  func(prompt string) error
	ui       *ebitenui.UI
	prompt   string
	startErr string
	quota    string
}

type MenuSceneOptions struct {
	// OnStart is called with the trimmed prompt, empty for the default ship.
	OnStart func(prompt string) error
	// Prompt prefills the prompt input.
	Prompt string
	// QuotaRemaining is shown under the buttons when non-negative.
	QuotaRemaining int
}

var _ Scene = &MenuScene{}

func NewMenuScene(opts MenuSceneOptions) (Scene, error) {
	if opts.OnStart == nil {
		return nil, fmt.Errorf("menu scene requires a start handler")
	}
	s := &MenuScene{
		BaseScene: NewBaseScene(objects.NewBaseObject("menu-root", nil)),
		onStart:   opts.OnStart,
		prompt:    opts.Prompt,
	}
	if opts.QuotaRemaining >= 0 {
		s.quota = fmt.Sprintf("%d generated ships left", opts.QuotaRemaining)
	}
	return s, nil
}

func (s *MenuScene) Init() error {
	s.renderUI()
	return s.BaseScene.Init()
}

func (s *MenuScene) newButton(label string) *widget.Button {
	return widget.NewButton(
		widget.ButtonOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionCenter,
				Stretch:  true,
			}),
		),
		widget.ButtonOpts.Image(&widget.ButtonImage{
			Idle:    image.NewNineSliceColor(color.NRGBA{R: 70, G: 82, B: 110, A: 255}),
			Hover:   image.NewNineSliceColor(color.NRGBA{R: 92, G: 106, B: 140, A: 255}),
			Pressed: image.NewNineSliceColor(color.NRGBA{R: 50, G: 60, B: 84, A: 255}),
		}),
		widget.ButtonOpts.Text(label, fonts.TTFNormalFont, &widget.ButtonTextColor{
			Idle:     color.NRGBA{254, 255, 255, 255},
			Disabled: color.NRGBA{R: 200, G: 200, B: 200, A: 255},
		}),
		widget.ButtonOpts.TextPadding(widget.Insets{
			Left:   30,
			Right:  30,
			Top:    8,
			Bottom: 8,
		}),
	)
}

func (s *MenuScene) renderUI() {
	fontFace := fonts.TTFNormalFont

	rootContainer := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(color.NRGBA{R: 12, G: 16, B: 28, A: 255})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(20),
			widget.RowLayoutOpts.Padding(widget.Insets{
				Top:    120,
				Left:   120,
				Right:  120,
				Bottom: 90,
			}))),
	)

	rootContainer.AddChild(widget.NewText(
		widget.TextOpts.Text("SKIRMISH", fonts.TTFLargeFont, color.White),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionCenter,
			}),
		),
	))

	promptTextInput := widget.NewTextInput(
		widget.TextInputOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionCenter,
				Stretch:  true,
			}),
		),
		widget.TextInputOpts.MobileInputMode("text"),
		widget.TextInputOpts.Image(&widget.TextInputImage{
			Idle:     image.NewNineSliceColor(color.NRGBA{R: 100, G: 100, B: 100, A: 255}),
			Disabled: image.NewNineSliceColor(color.NRGBA{R: 100, G: 100, B: 100, A: 255}),
		}),
		widget.TextInputOpts.Face(fontFace),
		widget.TextInputOpts.Color(&widget.TextInputColor{
			Idle:          color.NRGBA{254, 255, 255, 255},
			Disabled:      color.NRGBA{R: 200, G: 200, B: 200, A: 255},
			Caret:         color.NRGBA{254, 255, 255, 255},
			DisabledCaret: color.NRGBA{R: 200, G: 200, B: 200, A: 255},
		}),
		widget.TextInputOpts.Padding(widget.NewInsetsSimple(5)),
		widget.TextInputOpts.CaretOpts(
			widget.CaretOpts.Size(fontFace, 2),
		),
		widget.TextInputOpts.Placeholder("Describe your ship"),
		widget.TextInputOpts.ChangedHandler(func(args *widget.TextInputChangedEventArgs) {
			s.prompt = args.InputText
		}),
	)
	promptTextInput.SetText(s.prompt)
	rootContainer.AddChild(promptTextInput)

	generateButton := s.newButton("Generate ship")
	rootContainer.AddChild(generateButton)
	defaultButton := s.newButton("Launch default ship")
	rootContainer.AddChild(defaultButton)

	if s.quota != "" {
		rootContainer.AddChild(widget.NewText(
			widget.TextOpts.Text(s.quota, fontFace, color.NRGBA{R: 200, G: 200, B: 210, A: 255}),
			widget.TextOpts.WidgetOpts(
				widget.WidgetOpts.LayoutData(widget.RowLayoutData{
					Position: widget.RowLayoutPositionCenter,
				}),
			),
		))
	}

	if s.startErr != "" {
		rootContainer.AddChild(widget.NewText(
			widget.TextOpts.Text(s.startErr, fontFace, color.NRGBA{R: 255, G: 0, B: 0, A: 255}),
			widget.TextOpts.WidgetOpts(
				widget.WidgetOpts.LayoutData(widget.RowLayoutData{
					Position: widget.RowLayoutPositionCenter,
				}),
			),
		))
		s.startErr = ""
	}

	promptTextInput.Focus(true)

	start := func(prompt string) {
		if err := s.onStart(prompt); err != nil {
			log.Error("Failed to start game: %v", err)
			var actionableErr *ui.ActionableError
			if errors.As(err, &actionableErr) {
				s.startErr = actionableErr.Message
			} else {
				s.startErr = "Failed to start. Please try again."
			}
			s.renderUI()
		}
	}
	generateHandler := func(args interface{}) {
		prompt := promptTextInput.GetText()
		if prompt == "" {
			return
		}
		start(prompt)
	}
	promptTextInput.SubmitEvent.AddHandler(generateHandler)
	generateButton.ClickedEvent.AddHandler(generateHandler)
	defaultButton.ClickedEvent.AddHandler(func(args interface{}) {
		start("")
	})

	s.ui = &ebitenui.UI{
		Container: rootContainer,
	}
}

func (s *MenuScene) Update() error {
	s.ui.Update()
	return s.BaseScene.Update()
}

func (s *MenuScene) Draw(screen *ebiten.Image) {
	s.ui.Draw(screen)
	s.BaseScene.Draw(screen)
}
