// Package main provides the entry point for the Lectify CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/muesli/gitcha"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/lectify/lectify/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	markdownExtensions = []string{
		"*.md", "*.mdown", "*.mkdn", "*.mkd", "*.markdown",
	}

	configFile string
	style      string
	width      uint
	mouse      bool
	watch      bool
	highlight  string
	engine     string
	voice      string
	speechRate float64
	volume     float64
	language   string
	model      string
	cacheDir   string

	rootCmd = &cobra.Command{
		Use:   "lectify [SOURCE|DIR]",
		Short: "Read lectures aloud, with word-synced subtitles",
		Long: paragraph(
			fmt.Sprintf("\nRead markdown lectures aloud, %s. Code blocks appear on screen as the narration reaches them.", keyword("word by word")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// source provides a readable lecture source.
type source struct {
	reader io.ReadCloser
	URL    string
}

// sourceFromArg parses an argument and creates a readable source for it.
func sourceFromArg(arg string) (*source, error) {
	// from stdin
	if arg == "-" {
		return &source{reader: os.Stdin}, nil
	}

	// HTTP(S) URLs:
	if u, err := url.ParseRequestURI(arg); err == nil && strings.Contains(arg, "://") {
		if u.Scheme != "" {
			if u.Scheme != "http" && u.Scheme != "https" {
				return nil, fmt.Errorf("%s is not a supported protocol", u.Scheme)
			}
			// consumer of the source is responsible for closing the ReadCloser.
			resp, err := http.Get(u.String()) //nolint: noctx,bodyclose
			if err != nil {
				return nil, fmt.Errorf("unable to get url: %w", err)
			}
			if resp.StatusCode != http.StatusOK {
				return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
			}
			return &source{resp.Body, u.String()}, nil
		}
	}

	// a directory: play the first markdown file found in it
	if len(arg) == 0 {
		// use the current working dir if no argument was supplied
		arg = "."
	}
	st, err := os.Stat(arg)
	if err == nil && st.IsDir() {
		ch, err := gitcha.FindFilesExcept(arg, markdownExtensions, []string{".git"})
		if err != nil {
			return nil, fmt.Errorf("unable to search directory: %w", err)
		}
		for res := range ch {
			r, err := os.Open(res.Path)
			if err != nil {
				continue
			}
			u, _ := filepath.Abs(res.Path)
			return &source{r, u}, nil
		}
		return nil, errors.New("no markdown lecture found in directory")
	}

	r, err := os.Open(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	u, err := filepath.Abs(arg)
	if err != nil {
		return nil, fmt.Errorf("unable to get absolute path: %w", err)
	}
	return &source{r, u}, nil
}

// validateStyle checks if the style is a default style, if not, checks that
// the custom style exists.
func validateStyle(style string) error {
	if style != "auto" && styles.DefaultStyles[style] == nil {
		style = expandPath(style)
		if _, err := os.Stat(style); err != nil {
			return fmt.Errorf("specified style does not exist: %s", style)
		}
	}
	return nil
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	watch = viper.GetBool("watch")
	highlight = viper.GetString("highlight")
	engine = viper.GetString("tts.engine")
	voice = viper.GetString("tts.voice")
	speechRate = viper.GetFloat64("tts.rate")
	volume = viper.GetFloat64("tts.volume")
	language = viper.GetString("tts.language")
	model = viper.GetString("tts.model")
	cacheDir = viper.GetString("tts.cache.dir")

	switch voice {
	case "", "default", "female", "male":
	default:
		return fmt.Errorf("voice must be default, female, or male, got %q", voice)
	}
	switch highlight {
	case "", "background", "text":
	default:
		return fmt.Errorf("highlight must be background or text, got %q", highlight)
	}
	if speechRate < 0.5 || speechRate > 2.0 {
		return fmt.Errorf("rate must be between 0.5 and 2.0, got %.2f", speechRate)
	}
	if volume < 0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %.2f", volume)
	}
	if cacheDir != "" {
		cacheDir = expandPath(cacheDir)
	}
	if model != "" {
		model = expandPath(model)
	}

	// validate the glamour style
	style = viper.GetString("style")
	if err := validateStyle(style); err != nil {
		return err
	}

	// Detect terminal width
	if !cmd.Flags().Changed("width") {
		isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}
			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

func execute(_ *cobra.Command, args []string) error {
	// if stdin is a pipe then use stdin for input. note that you can also
	// explicitly use a - to read from stdin.
	if yes, err := stdinIsPipe(); err != nil {
		return err
	} else if yes {
		src := &source{reader: os.Stdin}
		defer src.reader.Close() //nolint:errcheck
		return runPlayer(src)
	}

	arg := ""
	if len(args) > 0 {
		arg = args[0]
	}
	src, err := sourceFromArg(arg)
	if err != nil {
		return err
	}
	defer src.reader.Close() //nolint:errcheck
	return runPlayer(src)
}

func runPlayer(src *source) error {
	content, err := io.ReadAll(src.reader)
	if err != nil {
		return fmt.Errorf("unable to read source: %w", err)
	}

	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	// use style set in env, or the CLI one if unset or invalid
	if err := validateStyle(cfg.GlamourStyle); err != nil {
		cfg.GlamourStyle = style
	}

	path := ""
	if !strings.Contains(src.URL, "://") {
		path = src.URL
	}

	cfg.Path = path
	if highlight != "" {
		cfg.HighlightMode = highlight
	}
	cfg.GlamourMaxWidth = width
	cfg.EnableMouse = mouse
	cfg.Watch = watch && path != ""
	cfg.Engine = engine
	cfg.Voice = voice
	cfg.Rate = speechRate
	cfg.Volume = volume
	cfg.Language = language
	cfg.Model = model
	cfg.CacheDir = cacheDir
	if cfg.CacheDir == "" {
		cfg.CacheDir = defaultCacheDir()
	}

	return ui.Run(cfg, content)
}

// defaultCacheDir returns the user-scoped cache directory, or empty if it
// cannot be determined (the synthesizers then run uncached).
func defaultCacheDir() string {
	scope := gap.NewScope(gap.User, "lectify")
	dir, err := scope.CacheDir()
	if err != nil {
		return ""
	}
	return dir
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().StringVarP(&style, "style", "s", styles.AutoStyle, "style name or JSON path")
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "word-wrap at width (set to 0 to disable)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "reload the lecture when the file changes")
	rootCmd.Flags().StringVar(&highlight, "highlight", "background", "word highlight style (background/text)")
	rootCmd.Flags().StringVarP(&engine, "engine", "e", "auto", "speech engine (auto/espeak/say/piper/gtts/mock/off)")
	rootCmd.Flags().StringVar(&voice, "voice", "default", "voice preference (default/female/male)")
	rootCmd.Flags().Float64VarP(&speechRate, "rate", "r", 1.0, "speech rate (0.5 to 2.0)")
	rootCmd.Flags().Float64Var(&volume, "volume", 1.0, "volume (0.0 to 1.0)")
	rootCmd.Flags().StringVarP(&language, "language", "l", "en", "speech language")
	rootCmd.Flags().StringVar(&model, "model", "", "piper voice model name or path")
	rootCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "synthesized audio cache directory")

	// Config bindings
	_ = viper.BindPFlag("style", rootCmd.Flags().Lookup("style"))
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("watch", rootCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("highlight", rootCmd.Flags().Lookup("highlight"))
	_ = viper.BindPFlag("tts.engine", rootCmd.Flags().Lookup("engine"))
	_ = viper.BindPFlag("tts.voice", rootCmd.Flags().Lookup("voice"))
	_ = viper.BindPFlag("tts.rate", rootCmd.Flags().Lookup("rate"))
	_ = viper.BindPFlag("tts.volume", rootCmd.Flags().Lookup("volume"))
	_ = viper.BindPFlag("tts.language", rootCmd.Flags().Lookup("language"))
	_ = viper.BindPFlag("tts.model", rootCmd.Flags().Lookup("model"))
	_ = viper.BindPFlag("tts.cache.dir", rootCmd.Flags().Lookup("cache-dir"))

	viper.SetDefault("style", styles.AutoStyle)
	viper.SetDefault("width", 0)
	viper.SetDefault("watch", false)
	viper.SetDefault("highlight", "background")
	viper.SetDefault("tts.engine", "auto")
	viper.SetDefault("tts.voice", "default")
	viper.SetDefault("tts.rate", 1.0)
	viper.SetDefault("tts.volume", 1.0)
	viper.SetDefault("tts.language", "en")
	viper.SetDefault("tts.model", "")
	viper.SetDefault("tts.cache.dir", "")

	rootCmd.AddCommand(configCmd, manCmd, voicesCmd, cacheCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "lectify")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "lectify")}, dirs...)
	}

	if c := os.Getenv("LECTIFY_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("lectify")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("lectify")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "lectify.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
