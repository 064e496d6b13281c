package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/lectify/lectify/tts"
	"github.com/lectify/lectify/tts/synth"
)

const voiceListTimeout = 2 * time.Second

var (
	voiceNameStyle = lipgloss.NewStyle().Bold(true)
	voiceMetaStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "243", Dark: "241"})
)

var voicesCmd = &cobra.Command{
	Use:   "voices [FILTER]",
	Short: "List the voices the configured speech engine offers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		eng, err := synth.New(synth.Config{
			Engine:   engine,
			Language: language,
			Model:    model,
		})
		if err != nil {
			return err
		}
		if eng == nil {
			return fmt.Errorf("speech is disabled (engine %q)", engine)
		}
		defer eng.Close() //nolint:errcheck

		ctx, cancel := context.WithTimeout(context.Background(), voiceListTimeout)
		defer cancel()

		voices, err := eng.Voices(ctx)
		if err != nil {
			return fmt.Errorf("unable to list voices: %w", err)
		}

		if len(args) == 1 {
			voices = filterVoices(voices, args[0])
		}
		if len(voices) == 0 {
			fmt.Println("No voices found.")
			return nil
		}

		nameWidth := 0
		for _, v := range voices {
			if w := runewidth.StringWidth(v.Name); w > nameWidth {
				nameWidth = w
			}
		}
		for _, v := range voices {
			meta := v.Language
			if v.Gender != "" {
				meta += "  " + v.Gender
			}
			fmt.Printf("%s  %s\n",
				voiceNameStyle.Render(runewidth.FillRight(v.Name, nameWidth)),
				voiceMetaStyle.Render(meta),
			)
		}
		return nil
	},
}

// filterVoices fuzzy-matches the filter against voice names and languages.
func filterVoices(voices []tts.Voice, filter string) []tts.Voice {
	haystack := make([]string, len(voices))
	for i, v := range voices {
		haystack[i] = v.Name + " " + v.Language
	}
	matches := fuzzy.Find(filter, haystack)
	out := make([]tts.Voice, 0, len(matches))
	for _, m := range matches {
		out = append(out, voices[m.Index])
	}
	return out
}
