package main

import (
	"os"
	"time"

	"github.com/gotk3/gotk3/gdk"
)

const previewSize = 480

// saveScreenshot renders the view with the configured screenshot settings.
// With the tools window open, a preview offers to delete the file again.
func (a *Application) saveScreenshot() {
	s := a.cfg.Screenshot
	path := s.PathAt(time.Now())

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		a.report(err)
		return
	}
	if err := a.engine.Screenshot(path, s.Scale, s.MaxIters); err != nil {
		a.report(err)
		return
	}

	if a.tools == nil {
		return
	}

	pixbuf, err := gdk.PixbufNewFromFileAtScale(path, previewSize, previewSize, true)
	if err != nil {
		a.report(err)
		return
	}

	preview, err := NewImageDialog(a.tools.Window, path, pixbuf, nil, func() {
		if err := os.Remove(path); err != nil {
			a.report(err)
			return
		}
		a.log.Info("screenshot deleted", "path", path)
	})
	if err != nil {
		a.report(err)
		return
	}
	preview.ShowAll()
}
