package main

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/gtk"

	"github.com/stewi1014/glmandel/programs"
	"github.com/stewi1014/glmandel/render"
)

const (
	swatchWidth  = 160
	swatchHeight = 20
)

// ConfigurationWindow is the tools window: a swatch button per color function,
// a slider per parameter of the active one, and the render settings.
type ConfigurationWindow struct {
	*gtk.Window
	app *Application

	swatches map[*programs.ColorFunction]*gtk.Button
	sliders  *gtk.Box

	iters       *gtk.SpinButton
	scale       *gtk.SpinButton
	supersample *gtk.CheckButton

	// syncing suppresses widget signals while widgets are updated from the engine.
	syncing bool
}

func NewConfigurationWindow(app *Application) (*ConfigurationWindow, error) {
	var err error
	w := &ConfigurationWindow{
		app:      app,
		swatches: make(map[*programs.ColorFunction]*gtk.Button),
	}

	w.Window, err = gtk.WindowNew(gtk.WINDOW_TOPLEVEL)
	if err != nil {
		return nil, fmt.Errorf("gtk.WindowNew: %w", err)
	}
	w.SetTitle("glmandel tools")
	w.SetDefaultSize(280, 600)
	w.Connect("delete-event", func() bool {
		// The render window owns the process lifetime.
		w.Hide()
		return true
	})

	box, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 6)
	if err != nil {
		return nil, err
	}
	box.SetMarginStart(8)
	box.SetMarginEnd(8)
	box.SetMarginTop(8)
	box.SetMarginBottom(8)

	l, _ := gtk.LabelNew("Colour Palette")
	box.PackStart(l, false, false, 0)

	for _, cf := range programs.ColorFunctions() {
		button, err := w.newSwatchButton(cf)
		if err != nil {
			return nil, err
		}
		box.PackStart(button, false, false, 0)
	}

	sep, _ := gtk.SeparatorNew(gtk.ORIENTATION_HORIZONTAL)
	box.PackStart(sep, false, false, 4)

	w.sliders, err = gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 2)
	if err != nil {
		return nil, err
	}
	box.PackStart(w.sliders, false, false, 0)

	sep, _ = gtk.SeparatorNew(gtk.ORIENTATION_HORIZONTAL)
	box.PackStart(sep, false, false, 4)

	if err := w.addSettings(box); err != nil {
		return nil, err
	}

	w.Add(box)
	w.rebuildSliders()
	w.sync()
	w.ShowAll()

	return w, nil
}

func (w *ConfigurationWindow) newSwatchButton(cf *programs.ColorFunction) (*gtk.Button, error) {
	button, err := gtk.ButtonNewWithLabel(cf.Name)
	if err != nil {
		return nil, err
	}
	button.SetAlwaysShowImage(true)
	button.SetImagePosition(gtk.POS_TOP)
	w.swatches[cf] = button
	w.refreshSwatch(cf)

	button.Connect("clicked", w.app.WrapErrorDialog(func() error {
		if err := w.app.engine.SetColorFunction(cf); err != nil {
			return err
		}
		w.rebuildSliders()
		return nil
	}))
	return button, nil
}

// refreshSwatch redraws the preview on cf's button with its current parameters.
func (w *ConfigurationWindow) refreshSwatch(cf *programs.ColorFunction) {
	button, ok := w.swatches[cf]
	if !ok {
		return
	}

	img, err := w.app.engine.RenderSwatch(cf, swatchWidth, swatchHeight)
	if err != nil {
		w.app.log.Warn("swatch", "colorFunction", cf.Name, "err", err)
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		w.app.log.Warn("swatch", "colorFunction", cf.Name, "err", err)
		return
	}

	pixbuf, err := gdk.PixbufNewFromBytesOnly(buf.Bytes())
	if err != nil {
		w.app.log.Warn("swatch", "colorFunction", cf.Name, "err", err)
		return
	}

	image, err := gtk.ImageNewFromPixbuf(pixbuf)
	if err != nil {
		return
	}
	button.SetImage(image)
}

// rebuildSliders replaces the sliders with one per parameter of the active color function.
func (w *ConfigurationWindow) rebuildSliders() {
	w.sliders.GetChildren().Foreach(func(item interface{}) {
		if widget, ok := item.(*gtk.Widget); ok {
			widget.Destroy()
		}
	})

	cf := w.app.engine.ColorFunction()
	for _, u := range cf.Uniforms {
		if err := w.addSlider(cf, u); err != nil {
			w.app.report(err)
		}
	}
	w.sliders.ShowAll()
}

func (w *ConfigurationWindow) addSlider(cf *programs.ColorFunction, u programs.Uniform) error {
	value, err := w.app.engine.Uniform(u.Name)
	if err != nil {
		return err
	}

	label, err := gtk.LabelNew(u.Name)
	if err != nil {
		return err
	}
	label.SetXAlign(0)

	step := float64(u.Max()-u.Min()) / 1000
	slider, err := gtk.ScaleNewWithRange(gtk.ORIENTATION_HORIZONTAL, float64(u.Min()), float64(u.Max()), step)
	if err != nil {
		return err
	}
	slider.SetValue(float64(value))

	push := func() {
		v := u.Clamp(float32(slider.GetValue()))
		w.app.report(w.app.engine.SetUniform(u.Name, v))
		w.refreshSwatch(cf)
	}

	// Dragging only pushes on release. Keyboard and wheel changes push immediately.
	dragging := false
	slider.Connect("button-press-event", func() bool {
		dragging = true
		return false
	})
	slider.Connect("button-release-event", func() bool {
		dragging = false
		push()
		return false
	})
	slider.Connect("value-changed", func() {
		if !dragging && !w.syncing {
			push()
		}
	})

	w.sliders.PackStart(label, false, false, 0)
	w.sliders.PackStart(slider, false, false, 0)
	return nil
}

func (w *ConfigurationWindow) addSettings(box *gtk.Box) error {
	var err error

	itersLabel, _ := gtk.LabelNew("Max iterations")
	itersLabel.SetXAlign(0)
	w.iters, err = gtk.SpinButtonNewWithRange(1, 1<<24, 100)
	if err != nil {
		return err
	}
	w.iters.Connect("value-changed", func() {
		if !w.syncing {
			w.app.setMaxIters(w.iters.GetValueAsInt())
		}
	})

	scaleLabel, _ := gtk.LabelNew("Resolution scale")
	scaleLabel.SetXAlign(0)
	w.scale, err = gtk.SpinButtonNewWithRange(0.25, 8, 0.25)
	if err != nil {
		return err
	}
	w.scale.SetDigits(2)
	w.scale.Connect("value-changed", func() {
		if !w.syncing {
			w.app.report(w.app.engine.SetResolutionScale(float32(w.scale.GetValue())))
		}
	})

	w.supersample, err = gtk.CheckButtonNewWithLabel("Supersampled")
	if err != nil {
		return err
	}
	w.supersample.Connect("toggled", func() {
		if w.syncing {
			return
		}
		mode := render.Progressive
		if w.supersample.GetActive() {
			mode = render.Supersampled
		}
		w.app.setMode(mode)
	})

	screenshot, err := gtk.ButtonNewWithLabel("Screenshot")
	if err != nil {
		return err
	}
	screenshot.Connect("clicked", w.app.saveScreenshot)

	for _, widget := range []gtk.IWidget{itersLabel, w.iters, scaleLabel, w.scale, w.supersample, screenshot} {
		box.PackStart(widget, false, false, 0)
	}
	return nil
}

// sync updates the settings widgets from the engine.
func (w *ConfigurationWindow) sync() {
	w.syncing = true
	defer func() { w.syncing = false }()

	e := w.app.engine
	w.iters.SetValue(float64(e.MaxIters()))
	w.scale.SetValue(float64(e.ResolutionScale()))
	w.supersample.SetActive(e.Mode() == render.Supersampled)
}
