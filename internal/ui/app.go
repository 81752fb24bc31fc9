package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/rs/zerolog"

	"inkboard/internal/export"
	"inkboard/internal/state"
)

// RunApp builds the window shell around the board and blocks until the
// window closes. shareLink, when non-empty, is shown in the status bar
// so peers can join the session.
func RunApp(store *state.Store, log zerolog.Logger, shareLink string) {
	a := app.NewWithID("io.inkboard.app")
	w := a.NewWindow("InkBoard")
	w.Resize(fyne.NewSize(1200, 800))

	prefs := state.NewFynePrefs(a.Preferences())
	board := NewBoardWidget(store, log)
	toolbar := NewToolbar(board, store, prefs)

	status := widget.NewLabel("Ready")
	if shareLink != "" {
		status.SetText("Session: " + shareLink)
	}

	// Text annotations open a modal editor as soon as they are placed.
	// The guard keeps one change notification from re-opening the
	// dialog for an edit already on screen.
	var editorOpenFor string
	origChange := store.OnChange
	store.OnChange = func() {
		if origChange != nil {
			origChange()
		}
		id := store.EditingID()
		if id == "" {
			editorOpenFor = ""
			return
		}
		if id != editorOpenFor {
			editorOpenFor = id
			fyne.Do(func() { editText(w, store, id) })
		}
	}

	exportRow := container.NewHBox(
		widget.NewButton("Export PDF", func() {
			dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
				if err != nil || writer == nil {
					return
				}
				defer writer.Close()
				if err := export.WritePDF(writer, store.Annotations()); err != nil {
					log.Error().Err(err).Msg("pdf export failed")
					status.SetText("PDF export failed")
					return
				}
				status.SetText("Exported PDF")
			}, w)
		}),
		widget.NewButton("Export SVG", func() {
			dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
				if err != nil || writer == nil {
					return
				}
				defer writer.Close()
				if err := export.WriteSVG(writer, store.Annotations()); err != nil {
					log.Error().Err(err).Msg("svg export failed")
					status.SetText("SVG export failed")
					return
				}
				status.SetText("Exported SVG")
			}, w)
		}),
	)

	bottom := container.NewBorder(nil, nil, nil, exportRow, status)
	w.SetContent(container.NewBorder(toolbar, bottom, nil, nil, board))
	w.ShowAndRun()
}

// editText shows the modal content editor for the annotation that is
// open for editing. Closing the dialog ends the edit either way.
func editText(w fyne.Window, store *state.Store, id string) {
	current, ok := store.Get(id)
	if !ok {
		store.StopEdit()
		return
	}
	entry := widget.NewEntry()
	entry.SetText(current.Text)
	dialog.ShowCustomConfirm("Edit text", "Apply", "Cancel", entry, func(apply bool) {
		if apply {
			store.UpdateText(id, entry.Text)
		}
		store.StopEdit()
	}, w)
}
