package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/dgallion1/reportcsv/internal/parser"
	"github.com/dgallion1/reportcsv/internal/pipeline"
)

// expandInputs resolves command-line arguments into an ordered, duplicate
// free list of files. Directories expand to every JSON file beneath them and
// glob patterns (including **) to their JSON matches. Plain file names are
// kept as given.
func expandInputs(args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		key := filepath.Clean(p)
		if !seen[key] {
			seen[key] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		pattern := arg
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			pattern = filepath.Join(arg, "**", "*")
		} else if !hasMeta(arg) {
			add(arg)
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		n := 0
		for _, m := range matches {
			if parser.IsSupportedExtension(m) {
				add(m)
				n++
			}
		}
		if n == 0 {
			return nil, fmt.Errorf("no JSON files match %q", arg)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	return out, nil
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

// watchDirs returns the directories whose changes affect args.
func watchDirs(args []string) []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, arg := range args {
		dir := filepath.Dir(arg)
		if info, err := os.Stat(arg); err == nil && info.IsDir() {
			dir = arg
		} else if hasMeta(arg) {
			base, _ := doublestar.SplitPattern(filepath.ToSlash(arg))
			dir = filepath.FromSlash(base)
		}
		dir = filepath.Clean(dir)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func fileSources(paths []string) []pipeline.Source {
	sources := make([]pipeline.Source, len(paths))
	for i, p := range paths {
		sources[i] = pipeline.FileSource(p)
	}
	return sources
}
