package main

import (
	"log/slog"
	"path/filepath"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"
)

// WrapErrorDialog turns a failable widget callback into a plain one that reports its error.
func (a *Application) WrapErrorDialog(failable func() error) func() {
	return func() {
		a.report(failable())
	}
}

// NewErrorDialog shows err above parent. It does not block the render loop.
func NewErrorDialog(parent *gtk.Window, err error) {
	dialog := gtk.MessageDialogNew(
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT,
		gtk.MESSAGE_ERROR,
		gtk.BUTTONS_CLOSE,
		"%s",
		err.Error(),
	)

	dialog.Connect("response", dialog.Destroy)

	messageArea, err := dialog.GetMessageArea()
	if err != nil {
		slog.Warn("no message area", "err", err)

	} else {
		messageArea.GetChildren().Foreach(func(item interface{}) {
			if widget, ok := item.(*gtk.Widget); ok {
				l, err := gtk.WidgetToLabel(widget)
				if err != nil {
					return
				}

				// Compiler logs are worth copying.
				l.SetSelectable(true)
			}
		})
	}

	dialog.SetKeepAbove(true)
	dialog.ShowAll()
}

func NewImageDialog(
	parent *gtk.Window,
	path string,
	pixbuf *gdk.Pixbuf,
	responseKeep func(),
	responseDelete func(),
) (*ImagePreview, error) {
	w := &ImagePreview{}
	var err error

	w.Window, err = gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return nil, err
	}
	w.SetTitle(filepath.Base(path))
	w.SetTransientFor(parent)

	previewImage, err := gtk.ImageNewFromPixbuf(pixbuf)
	if err != nil {
		return nil, err
	}

	previewImage.SetHExpand(true)
	previewImage.SetVExpand(true)

	deleteButton, _ := gtk.ButtonNewWithLabel("Delete")
	deleteButton.Connect("clicked", func(button *gtk.Button) {
		if responseDelete != nil {
			responseDelete()
		}
		w.Destroy()
	})

	keepButton, _ := gtk.ButtonNewWithLabel("Keep")
	keepButton.Connect("clicked", func(button *gtk.Button) {
		if responseKeep != nil {
			responseKeep()
		}
		w.Destroy()
	})

	grid, _ := gtk.GridNew()
	grid.Attach(previewImage, 0, 0, 5, 1)
	grid.Attach(keepButton, 0, 1, 1, 1)
	grid.Attach(deleteButton, 4, 1, 1, 1)

	w.Add(grid)

	return w, nil
}

type ImagePreview struct {
	*gtk.Window
}
