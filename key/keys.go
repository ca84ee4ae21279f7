// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Audio Session - these keys govern the lifecycle of the audio processing graph.
const (
	AudioInitTimeout = "audio.init_timeout"
	AudioRetryDelay  = "audio.retry_delay"
	AudioEngine      = "audio.engine"
)

// Media Playback - these keys configure the external mpv processes.
const (
	PlayerBinary       = "player.binary"
	PlayerTickInterval = "player.tick_interval"
)

// File Selection - these keys control path suggestions in the file field.
const (
	FilesRememberRecent = "files.remember_recent"
	FilesMaxSuggestions = "files.max_suggestions"
)

// Terminal User Interface (TUI) - these keys define slider geometry and keyboard step sizes.
const (
	TUISliderWidth = "tui.slider_width"
	TUIPitchStep   = "tui.pitch_step"
	TUIRateStep    = "tui.rate_step"
	TUIVolumeStep  = "tui.volume_step"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern the non-TUI application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
