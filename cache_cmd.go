package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var clearCache bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show or clear the synthesized audio cache",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		dir := cacheDir
		if dir == "" {
			dir = defaultCacheDir()
		}
		if dir == "" {
			return fmt.Errorf("no cache directory configured")
		}

		if clearCache {
			n, err := removeCachedAudio(dir)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d cached utterances from %s\n", n, dir)
			return nil
		}

		var size uint64
		var count int
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".zst") {
				return nil //nolint:nilerr
			}
			if info, err := d.Info(); err == nil {
				size += uint64(info.Size()) //nolint:gosec
				count++
			}
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			return err
		}

		fmt.Printf("Cache directory: %s\n", dir)
		fmt.Printf("Cached utterances: %d (%s)\n", count, humanize.IBytes(size))
		return nil
	},
}

func removeCachedAudio(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zst") {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func init() {
	cacheCmd.Flags().BoolVar(&clearCache, "clear", false, "remove all cached audio")
}
