package config

import (
	"runtime"
	"time"
)

// Settings collects every environment-driven knob of the CLI and the HTTP
// service.
type Settings struct {
	// Engine defaults, used when a flag or form field is absent.
	Threshold  int
	Kernel     string
	MatrixSize int
	Quality    int
	// MaxPixels bounds decoded images and resize targets.
	MaxPixels  int

	Workers     int
	PresetsFile string

	Port               string
	GinMode            string
	DataDir            string
	MaxUploadMB        int
	RateLimitPerMinute int
	RateLimitBurst     int
	JobRetention       time.Duration
}

// Load reads Settings from the environment.
func Load() Settings {
	return Settings{
		Threshold:  GetInt("HALFTONE_THRESHOLD", 127),
		Kernel:     Get("HALFTONE_KERNEL", "FLOYD_STEINBERG"),
		MatrixSize: GetInt("HALFTONE_SIZE", 8),
		Quality:    GetInt("HALFTONE_JPEG_QUALITY", 75),
		MaxPixels:  GetInt("HALFTONE_MAX_PIXELS", 50_000_000),

		Workers:     GetInt("HALFTONE_WORKERS", runtime.NumCPU()),
		PresetsFile: Get("HALFTONE_PRESETS_FILE", ""),

		Port:               Get("PORT", "8000"),
		GinMode:            Get("GIN_MODE", ""),
		DataDir:            Get("DATA_DIR", "./data"),
		MaxUploadMB:        GetInt("MAX_UPLOAD_MB", 20),
		RateLimitPerMinute: GetInt("RATE_LIMIT_PER_MINUTE", 60),
		RateLimitBurst:     GetInt("RATE_LIMIT_BURST", 10),
		JobRetention:       GetDuration("JOB_RETENTION", 7*24*time.Hour),
	}
}
