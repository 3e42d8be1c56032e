package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/loykin/airlaunch/internal/status"
)

// view is the status window content. update must run on the Fyne thread.
type view struct {
	content fyne.CanvasObject

	backend   *widget.Label
	readiness *widget.Label
	probe     *widget.Label
	usage     *widget.Label
	progress  *widget.ProgressBar
}

func newView(title string) *view {
	v := &view{
		backend:   widget.NewLabel(""),
		readiness: widget.NewLabel(""),
		probe:     widget.NewLabel(""),
		usage:     widget.NewLabel(""),
		progress:  widget.NewProgressBar(),
	}
	heading := widget.NewLabelWithStyle(title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	form := container.New(
		layout.NewFormLayout(),
		widget.NewLabel("Backend"), v.backend,
		widget.NewLabel("Readiness"), v.readiness,
		widget.NewLabel("Probe"), v.probe,
		widget.NewLabel("Usage"), v.usage,
	)
	v.content = container.NewPadded(container.NewVBox(
		heading,
		widget.NewSeparator(),
		form,
		v.progress,
	))
	return v
}

func (v *view) update(s status.Snapshot) {
	v.backend.SetText(s.BackendLine())
	v.readiness.SetText(s.ReadinessLine())
	v.probe.SetText(s.Readiness.Probe)
	v.usage.SetText(s.UsageLine())

	r := s.Readiness
	if r.MaxAttempts > 0 {
		v.progress.Max = float64(r.MaxAttempts)
	}
	v.progress.SetValue(float64(r.Attempts))
	if r.State == status.StateReady {
		v.progress.Hide()
	} else {
		v.progress.Show()
	}
}
