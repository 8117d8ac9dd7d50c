package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/gazemap-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel encapsulates the configuration form widgets and apply logic.
// It owns its widgets and writes back into *config.Config on ApplyChanges.
type ConfigPanel interface {
	Build(startRow int) (endRow int) // constructs widgets starting at startRow, returns next free row
	SetEditable(enabled bool)
	ApplyChanges() // parses widget text into underlying config and persists
}

type configPanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	applyBtn *ButtonWidget
	status   *LabelWidget
	widgets  map[string]*TextWidget // keyed by config json name
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) ConfigPanel {
	return &configPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

func (v *configPanel) Build(startRow int) (row int) {
	c := v.cfg
	row = startRow
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(28))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		v.widgets[id] = w
		row++
	}
	makeRow("reference_image", "Reference Image", c.ReferenceImage)
	makeRow("output_path", "Overlay Output", c.OutputPath)
	makeRow("duration_seconds", "Duration Seconds", fmt.Sprintf("%.1f", c.DurationSeconds))
	makeRow("camera_device", "Camera Device", strconv.Itoa(c.CameraDevice))
	makeRow("detector_url", "Detector URL", c.DetectorURL)
	makeRow("max_detector_errors", "Max Detector Errors", strconv.Itoa(c.MaxDetectorErrors))
	makeRow("gaze_scale", "Gaze Scale", fmt.Sprintf("%.1f", c.GazeScale))
	makeRow("stamp_radius", "Stamp Radius Px", strconv.Itoa(c.StampRadius))
	makeRow("kernel", "Kernel (disk/gaussian)", c.Kernel)
	makeRow("palette", "Palette (jet/hot)", c.Palette)
	makeRow("heatmap_weight", "Heatmap Weight (0-1)", fmt.Sprintf("%.2f", c.HeatmapWeight))
	v.applyBtn = Button(Txt("Apply Changes"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	v.status = Label(Txt(""), Anchor("w"))
	Grid(v.status, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	row++
	return row
}

func (v *configPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

func (v *configPanel) text(id string) (string, bool) {
	w := v.widgets[id]
	if w == nil {
		return "", false
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), "")), true
}

func (v *configPanel) setStatus(msg string) {
	if v.status != nil {
		v.status.Configure(Txt(msg))
	}
}

// ApplyChanges validates the edited copy before replacing the live config.
// Unparseable numbers keep their previous value.
func (v *configPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	assignString := func(id string, dst *string) {
		if s, ok := v.text(id); ok {
			*dst = s
		}
	}
	assignFloat := func(id string, dst *float64) {
		if s, ok := v.text(id); ok {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				*dst = f
			}
		}
	}
	assignInt := func(id string, dst *int) {
		if s, ok := v.text(id); ok {
			if i, err := strconv.Atoi(s); err == nil {
				*dst = i
			}
		}
	}
	assignString("reference_image", &cfg.ReferenceImage)
	assignString("output_path", &cfg.OutputPath)
	assignFloat("duration_seconds", &cfg.DurationSeconds)
	assignInt("camera_device", &cfg.CameraDevice)
	assignString("detector_url", &cfg.DetectorURL)
	assignInt("max_detector_errors", &cfg.MaxDetectorErrors)
	assignFloat("gaze_scale", &cfg.GazeScale)
	assignInt("stamp_radius", &cfg.StampRadius)
	assignString("kernel", &cfg.Kernel)
	assignString("palette", &cfg.Palette)
	assignFloat("heatmap_weight", &cfg.HeatmapWeight)
	if err := cfg.Validate(); err != nil {
		if v.logger != nil {
			v.logger.Warn("config rejected", "error", err)
		}
		v.setStatus("Invalid: " + err.Error())
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
		v.setStatus("Save failed")
		return
	}
	if v.logger != nil {
		v.logger.Info("config saved", "path", v.cfgPath)
	}
	v.setStatus("Saved")
}
