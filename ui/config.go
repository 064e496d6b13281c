package ui

// Config contains TUI-specific configuration.
type Config struct {
	GlamourStyle    string `env:"GLAMOUR_STYLE"`
	GlamourMaxWidth uint
	EnableMouse     bool

	// Path of the lecture document being played.
	Path string

	// Playback settings, resolved by the CLI layer.
	Engine   string
	Voice    string
	Rate     float64
	Volume   float64
	CacheDir string
	Language string
	Model    string

	// Watch reloads the lecture when the file changes on disk.
	Watch bool

	// HighlightMode selects how the spoken word is marked: "background"
	// paints behind it, "text" recolors it.
	HighlightMode string `env:"LECTIFY_HIGHLIGHT" envDefault:"background"`
}
