// Package ui implements the Lectify terminal player.
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lectify/lectify/lecture"
	"github.com/lectify/lectify/tts"
	"github.com/lectify/lectify/tts/synth"
)

// Run parses the lecture, builds the playback driver, and blocks on the
// player UI until the user quits.
func Run(cfg Config, content []byte) error {
	lec, err := lecture.Parse(content)
	if err != nil {
		return err
	}
	segments := lecture.NewSegmenter().Segment(lec.Items)

	engine, err := synth.New(synth.Config{
		Engine:   cfg.Engine,
		Language: cfg.Language,
		Model:    cfg.Model,
		CacheDir: cfg.CacheDir,
	})
	if err != nil {
		return fmt.Errorf("unable to start speech engine: %w", err)
	}

	ttsCfg := tts.DefaultConfig()
	ttsCfg.Engine = cfg.Engine
	ttsCfg.Voice = tts.VoicePreference(cfg.Voice)
	ttsCfg.Rate = cfg.Rate
	ttsCfg.Volume = cfg.Volume

	r := &relay{}
	driver := tts.NewDriver(engine, ttsCfg, driverHooks(r))
	defer driver.Close() //nolint:errcheck

	if err := driver.Load(segments); err != nil {
		return err
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	m := newPlayerModel(cfg, lec, segments, driver)
	p := tea.NewProgram(m, opts...)
	r.attach(p)

	if cfg.Watch && cfg.Path != "" {
		if err := watchLecture(cfg.Path, r); err != nil {
			log.Warn("unable to watch lecture file", "path", cfg.Path, "err", err)
		}
	}

	if lec.Title != "" {
		termenv.SetWindowTitle("Lectify · " + lec.Title)
	}

	_, err = p.Run()
	return err
}
