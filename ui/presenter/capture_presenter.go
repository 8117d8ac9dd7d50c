package presenter

// CaptureModel provides enabled state access.
type CaptureModel interface {
	Enabled() bool
	SetEnabled(bool)
}

// LifecycleContract narrows what the presenter needs from the session runner.
type LifecycleContract interface {
	Start()
	Stop()
}

// CaptureView updates UI elements affected by starting and stopping capture.
// State label updates are owned solely by StatePresenter.
type CaptureView interface {
	PreviewReset()
	ConfigEditable(bool)
}

// CapturePresenter owns presentation logic for starting and stopping sessions.
type CapturePresenter struct {
	model   CaptureModel
	service LifecycleContract
	view    CaptureView

	stopping bool // Stop sent, waiting for Finished
}

func NewCapturePresenter(model CaptureModel, service LifecycleContract, view CaptureView) *CapturePresenter {
	return &CapturePresenter{model: model, service: service, view: view}
}

// Enable starts a new session and locks the config form. Idempotent.
func (c *CapturePresenter) Enable() {
	if c == nil || c.model == nil || c.service == nil || c.view == nil {
		return
	}
	if c.model.Enabled() { // already capturing
		return
	}
	c.model.SetEnabled(true)
	c.view.PreviewReset()
	c.view.ConfigEditable(false)
	c.service.Start()
}

// Disable asks the running session to stop. The session still finalizes,
// so capture stays enabled and Start is ignored until Finished. Idempotent.
func (c *CapturePresenter) Disable() {
	if c == nil || c.model == nil || c.service == nil || c.view == nil {
		return
	}
	if !c.model.Enabled() || c.stopping {
		return
	}
	c.stopping = true
	c.service.Stop()
}

// Finished records that the session ended on its own (duration, source or
// failure) and unlocks the config form.
func (c *CapturePresenter) Finished() {
	if c == nil || c.model == nil || c.view == nil {
		return
	}
	c.stopping = false
	c.model.SetEnabled(false)
	c.view.ConfigEditable(true)
}

// Toggle flips enabled state delegating to Enable/Disable.
func (c *CapturePresenter) Toggle() {
	if c == nil || c.model == nil {
		return
	}
	if c.model.Enabled() {
		c.Disable()
		return
	}
	c.Enable()
}
