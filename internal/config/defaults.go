package config

const (
	defaultConfigPath        = "~/.config/graphion/config.toml"
	defaultWorkDir           = "~/.local/share/graphion/work"
	defaultPublicDir         = "~/.local/share/graphion/public"
	defaultLogDir            = "~/.local/share/graphion/logs"
	defaultAPIBind           = "127.0.0.1:3000"
	defaultGeminiModel       = "gemini-2.5-flash"
	defaultGeminiTemperature = 0.4
	defaultGeminiMaxTokens   = 8000
	defaultGeminiTimeout     = 120
	defaultSafetyThreshold   = "BLOCK_ONLY_HIGH"
	defaultWidth             = 1280
	defaultHeight            = 720
	defaultFPS               = 30
	defaultDurationSeconds   = 5
	defaultImageFormat       = ImageFormatWebP
	defaultImageQuality      = 80
	defaultNavigationTimeout = 30
	defaultNetworkIdleMillis = 500
	defaultPacing            = PacingBestEffort
	defaultFFmpegBinary      = "ffmpeg"
	defaultCodec             = "libx264"
	defaultCRF               = 23
	defaultPreset            = "medium"
	defaultPixelFormat       = "yuv420p"
	defaultMinPromptLength   = 5
	defaultMaxBodyBytes      = 64 << 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Image formats accepted by render.image_format.
const (
	ImageFormatWebP = "webp"
	ImageFormatJPEG = "jpeg"
	ImageFormatPNG  = "png"
)

// Pacing strategies accepted by render.pacing.
const (
	// PacingBestEffort waits one frame interval minus capture latency and never catches up.
	PacingBestEffort = "best_effort"
	// PacingWallClock anchors frame i at start + i*interval.
	PacingWallClock = "wall_clock"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:   defaultWorkDir,
			PublicDir: defaultPublicDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Gemini: Gemini{
			Model:           defaultGeminiModel,
			Temperature:     defaultGeminiTemperature,
			MaxOutputTokens: defaultGeminiMaxTokens,
			TimeoutSeconds:  defaultGeminiTimeout,
			SafetyThreshold: defaultSafetyThreshold,
		},
		Render: Render{
			Width:                    defaultWidth,
			Height:                   defaultHeight,
			FPS:                      defaultFPS,
			DurationSeconds:          defaultDurationSeconds,
			ImageFormat:              defaultImageFormat,
			ImageQuality:             defaultImageQuality,
			NavigationTimeoutSeconds: defaultNavigationTimeout,
			NetworkIdleMillis:        defaultNetworkIdleMillis,
			NoSandbox:                true,
			Pacing:                   defaultPacing,
		},
		Encoding: Encoding{
			FFmpegBinary: defaultFFmpegBinary,
			Codec:        defaultCodec,
			CRF:          defaultCRF,
			Preset:       defaultPreset,
			PixelFormat:  defaultPixelFormat,
		},
		Server: Server{
			MinPromptLength: defaultMinPromptLength,
			MaxBodyBytes:    defaultMaxBodyBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
