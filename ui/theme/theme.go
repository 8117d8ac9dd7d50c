package theme

// Centralized styling for the gazemap window. InitStyles activates the base
// ttk theme and configures the semantic styles referenced by the views.

import (
	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// Palette defines core semantic colors used across widgets. Capture colors
// follow the heatmap palette ends so the UI reads cold when idle and hot
// while recording.
const (
	ColorBg        = "#f7f9fb"
	ColorSurface   = "#ffffff"
	ColorBorder    = "#d0d7de"
	ColorIdle      = "#1d4ed8" // jet low end
	ColorRecording = "#b91c1c" // jet high end
	ColorDone      = "#10b981"
	ColorText      = "#1e293b"
	ColorTextMuted = "#64748b"
)

// style names used with Style("start.TButton") etc.
const (
	StyleStartButton = "start.TButton"
	StyleStopButton  = "stop.TButton"
	StyleStateLabel  = "state.TLabel"
	StyleTimerLabel  = "timer.TLabel"
)

// StateColor returns the state label background for a session state name.
func StateColor(state string) string {
	switch state {
	case "capturing", "finalizing":
		return ColorRecording
	case "done":
		return ColorDone
	case "failed":
		return ColorTextMuted
	default:
		return ColorIdle
	}
}

// InitStyles applies palette and style configuration. Call once after the
// root window exists.
func InitStyles() {
	_ = ActivateTheme("azure light") // baseline metrics
	App.Configure(Background(ColorBg))

	StyleConfigure(StyleStartButton,
		Background(ColorIdle),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleStopButton,
		Background(ColorRecording),
		Foreground("white"),
		Padding("4p 3p"),
		Borderwidth(1),
		Relief("ridge"),
	)
	StyleConfigure(StyleStateLabel,
		Foreground("white"),
		Background(ColorIdle),
		Padding("4p 2p"),
		Borderwidth(1),
		Relief("groove"),
	)
	StyleConfigure(StyleTimerLabel,
		Foreground(ColorText),
		Background(ColorSurface),
		Padding("2p 1p"),
	)
}

// SetStateStyle recolors the state label to match the session state.
func SetStateStyle(state string) {
	StyleConfigure(StyleStateLabel, Background(StateColor(state)))
}
