package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override, e.g. GAZEMAP_DURATION_SECONDS.
const EnvPrefix = "GAZEMAP_"

// Config holds runtime configuration for capture, detection and heatmap output.
// Fields may be loaded from a JSON file, overridden by GAZEMAP_* environment
// variables and finally by command-line flags.
type Config struct {
	Debug    bool   `json:"debug"`
	LogLevel string `json:"log_level" validate:"oneof=debug info warn error"`
	LogFile  string `json:"log_file"`

	// Frame source. FramesDir replays still images instead of opening the camera.
	CameraDevice int    `json:"camera_device" validate:"gte=0"`
	FrameWidth   int    `json:"frame_width" validate:"gte=0"`
	FrameHeight  int    `json:"frame_height" validate:"gte=0"`
	FramesDir    string `json:"frames_dir"`

	// Reference image and outputs
	ReferenceImage    string `json:"reference_image"`
	OutputPath        string `json:"output_path" validate:"required"`
	HeatmapOutputPath string `json:"heatmap_output_path"`

	// Session
	DurationSeconds   float64 `json:"duration_seconds" validate:"gt=0"`
	MaxDetectorErrors int     `json:"max_detector_errors" validate:"gte=1"`

	// Landmark detector. LandmarksReplay takes precedence over DetectorURL.
	DetectorURL            string  `json:"detector_url" validate:"omitempty,url"`
	LandmarksReplay        string  `json:"landmarks_replay"`
	RefineLandmarks        bool    `json:"refine_landmarks"`
	MinDetectionConfidence float64 `json:"min_detection_confidence" validate:"gte=0.5,lte=1"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence" validate:"gte=0.5,lte=1"`
	MaxFaces               int     `json:"max_faces" validate:"gte=1,lte=8"`

	// Heatmap
	GazeScale     float64 `json:"gaze_scale" validate:"gt=0"`
	StampRadius   int     `json:"stamp_radius" validate:"gte=1"`
	Kernel        string  `json:"kernel" validate:"oneof=disk gaussian"`
	Palette       string  `json:"palette" validate:"oneof=jet hot"`
	HeatmapWeight float64 `json:"heatmap_weight" validate:"gte=0,lte=1"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:                  false,
		LogLevel:               "info",
		CameraDevice:           0,
		FrameWidth:             640,
		FrameHeight:            480,
		ReferenceImage:         "ad.jpg",
		OutputPath:             "heatmap_overlay.png",
		DurationSeconds:        6,
		MaxDetectorErrors:      10,
		DetectorURL:            "ws://localhost:8765/facemesh",
		RefineLandmarks:        true,
		MinDetectionConfidence: 0.5,
		MinTrackingConfidence:  0.5,
		MaxFaces:               1,
		GazeScale:              100,
		StampRadius:            15,
		Kernel:                 "disk",
		Palette:                "jet",
		HeatmapWeight:          0.4,
	}
}

var validate = validator.New()

// Validate clamps/normalizes soft values to safe ranges, then checks the hard
// constraints. RefineLandmarks is not clamped: a mesh without iris points is a
// configuration error the caller must fix.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DurationSeconds <= 0 {
		c.DurationSeconds = 6
	}
	if c.MaxDetectorErrors <= 0 {
		c.MaxDetectorErrors = 10
	}
	if c.FrameWidth < 0 {
		c.FrameWidth = 0
	}
	if c.FrameHeight < 0 {
		c.FrameHeight = 0
	}
	if c.MaxFaces <= 0 {
		c.MaxFaces = 1
	}
	if c.GazeScale <= 0 {
		c.GazeScale = 100
	}
	if c.StampRadius <= 0 {
		c.StampRadius = 15
	}
	c.Kernel = strings.ToLower(c.Kernel)
	if c.Kernel == "" {
		c.Kernel = "disk"
	}
	c.Palette = strings.ToLower(c.Palette)
	if c.Palette == "" {
		c.Palette = "jet"
	}
	if c.HeatmapWeight < 0 {
		c.HeatmapWeight = 0
	} else if c.HeatmapWeight > 1 {
		c.HeatmapWeight = 1
	}
	if c.OutputPath == "" {
		c.OutputPath = "heatmap_overlay.png"
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if !c.RefineLandmarks {
		return errors.New("config: refine_landmarks must be true, gaze estimation needs iris landmarks")
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
// Environment overrides are applied after the file and before validation.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, err
		}
	} else {
		defer f.Close()
		dec := json.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return DefaultConfig(), err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadDotEnv loads variables from the given .env files (default ".env") into
// the process environment without overriding variables already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

type envBinding struct {
	name string
	set  func(c *Config, v string) error
}

func envString(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error { *dst(c) = v; return nil }
}

func envInt(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

func envFloat(dst func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

func envBool(dst func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst(c) = b
		return nil
	}
}

var envBindings = []envBinding{
	{"DEBUG", envBool(func(c *Config) *bool { return &c.Debug })},
	{"LOG_LEVEL", envString(func(c *Config) *string { return &c.LogLevel })},
	{"LOG_FILE", envString(func(c *Config) *string { return &c.LogFile })},
	{"CAMERA_DEVICE", envInt(func(c *Config) *int { return &c.CameraDevice })},
	{"FRAME_WIDTH", envInt(func(c *Config) *int { return &c.FrameWidth })},
	{"FRAME_HEIGHT", envInt(func(c *Config) *int { return &c.FrameHeight })},
	{"FRAMES_DIR", envString(func(c *Config) *string { return &c.FramesDir })},
	{"REFERENCE_IMAGE", envString(func(c *Config) *string { return &c.ReferenceImage })},
	{"OUTPUT_PATH", envString(func(c *Config) *string { return &c.OutputPath })},
	{"HEATMAP_OUTPUT_PATH", envString(func(c *Config) *string { return &c.HeatmapOutputPath })},
	{"DURATION_SECONDS", envFloat(func(c *Config) *float64 { return &c.DurationSeconds })},
	{"MAX_DETECTOR_ERRORS", envInt(func(c *Config) *int { return &c.MaxDetectorErrors })},
	{"DETECTOR_URL", envString(func(c *Config) *string { return &c.DetectorURL })},
	{"LANDMARKS_REPLAY", envString(func(c *Config) *string { return &c.LandmarksReplay })},
	{"REFINE_LANDMARKS", envBool(func(c *Config) *bool { return &c.RefineLandmarks })},
	{"MIN_DETECTION_CONFIDENCE", envFloat(func(c *Config) *float64 { return &c.MinDetectionConfidence })},
	{"MIN_TRACKING_CONFIDENCE", envFloat(func(c *Config) *float64 { return &c.MinTrackingConfidence })},
	{"MAX_FACES", envInt(func(c *Config) *int { return &c.MaxFaces })},
	{"GAZE_SCALE", envFloat(func(c *Config) *float64 { return &c.GazeScale })},
	{"STAMP_RADIUS", envInt(func(c *Config) *int { return &c.StampRadius })},
	{"KERNEL", envString(func(c *Config) *string { return &c.Kernel })},
	{"PALETTE", envString(func(c *Config) *string { return &c.Palette })},
	{"HEATMAP_WEIGHT", envFloat(func(c *Config) *float64 { return &c.HeatmapWeight })},
}

// ApplyEnv overrides fields from GAZEMAP_* environment variables. Unset
// variables leave the field untouched; unparsable values are an error.
func (c *Config) ApplyEnv() error {
	for _, b := range envBindings {
		v, ok := os.LookupEnv(EnvPrefix + b.name)
		if !ok {
			continue
		}
		if err := b.set(c, strings.TrimSpace(v)); err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, b.name, err)
		}
	}
	return nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
