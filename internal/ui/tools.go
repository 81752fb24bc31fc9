package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"inkboard/internal/state"
)

// --- Custom widget for color swatches ---

type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(parseHexColor(s.Hex))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

var palette = []string{
	"#1a1a1a", // ink
	"#e5484d", // red
	"#30a46c", // green
	"#4f86f7", // blue
	"#f5a623", // amber
	"#ffffff", // eraser-ish
}

// NewToolbar builds the tool strip: mode toggles, shape picker, color
// palette, width slider and board actions. Style changes are written
// through the preference store so they survive restarts.
func NewToolbar(board *BoardWidget, store *state.Store, prefs state.Prefs) fyne.CanvasObject {
	style := prefs.Load()
	store.SetStyle(style)

	saveStyle := func() {
		prefs.Save(style)
		store.SetStyle(style)
	}

	// Mode radio: pan is the inert default, the rest route pointer
	// events into the store.
	mode := widget.NewRadioGroup([]string{"Pan", "Draw", "Text", "Shape", "Select"}, func(choice string) {
		store.SetDrawingMode(false)
		store.SetSelectMode(false)
		switch choice {
		case "Draw":
			store.SetDrawKind(state.DrawFreehand)
			store.SetDrawingMode(true)
		case "Text":
			store.SetDrawKind(state.DrawText)
			store.SetDrawingMode(true)
		case "Shape":
			store.SetDrawKind(state.DrawShape)
			store.SetDrawingMode(true)
		case "Select":
			store.SetSelectMode(true)
		}
	})
	mode.Horizontal = true
	mode.SetSelected("Pan")

	shapePicker := widget.NewSelect([]string{"Rectangle", "Circle", "Line", "Arrow"}, func(choice string) {
		switch choice {
		case "Rectangle":
			store.SetShapeKind(state.ShapeRectangle)
		case "Circle":
			store.SetShapeKind(state.ShapeCircle)
		case "Line":
			store.SetShapeKind(state.ShapeLine)
		case "Arrow":
			store.SetShapeKind(state.ShapeArrow)
		}
	})
	shapePicker.SetSelected("Rectangle")

	onColorTapped := func(hex string) {
		style.StrokeColor = hex
		style.TextColor = hex
		style.ShapeStrokeColor = hex
		saveStyle()
	}
	colorBox := container.NewHBox()
	for _, hex := range palette {
		colorBox.Add(newColorSwatch(hex, onColorTapped))
	}

	widthSlider := widget.NewSlider(1, 30)
	widthSlider.SetValue(float64(style.StrokeWidth))
	widthSlider.OnChanged = func(v float64) {
		style.StrokeWidth = float32(v)
		style.ShapeStrokeWidth = float32(v)
		saveStyle()
	}
	sliderBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), widthSlider)

	fillCheck := widget.NewCheck("Fill", func(on bool) {
		style.ShapeFilled = on
		saveStyle()
	})
	fillCheck.SetChecked(style.ShapeFilled)

	deleteBtn := widget.NewButton("Delete", store.DeleteSelected)
	clearBtn := widget.NewButton("Clear", store.Clear)
	resetBtn := widget.NewButton("Reset View", board.ResetView)

	return container.NewHBox(
		mode,
		widget.NewSeparator(),
		shapePicker,
		fillCheck,
		widget.NewSeparator(),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Width:"),
		sliderBox,
		layout.NewSpacer(),
		deleteBtn,
		clearBtn,
		resetBtn,
	)
}
