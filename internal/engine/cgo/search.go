package cgo

import (
	"os"
	"path/filepath"
	"runtime"
)

// LibraryEnv lists extra directories to search, separated by the OS path
// list separator.
const LibraryEnv = "SERIALBOX_LIBRARY_PATH"

// LibraryName returns the wrapper library file name for the current OS.
func LibraryName() string {
	if runtime.GOOS == "darwin" {
		return "libSerialbox_Wrapper.dylib"
	}
	return "libSerialbox_Wrapper.so"
}

// Candidates returns the library paths to try, in order: the configured
// directories, the LibraryEnv directories, the executable's directory and
// the working directory. Duplicates are dropped.
func Candidates(dirs []string) []string {
	var all []string
	all = append(all, dirs...)
	if env := os.Getenv(LibraryEnv); env != "" {
		all = append(all, filepath.SplitList(env)...)
	}
	if exe, err := os.Executable(); err == nil {
		all = append(all, filepath.Dir(exe))
	}
	all = append(all, ".")

	seen := make(map[string]bool, len(all))
	out := make([]string, 0, len(all))
	for _, d := range all {
		if d == "" {
			continue
		}
		p := filepath.Join(d, LibraryName())
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// Find returns the first candidate that exists as a regular file, or ""
// and every path it tried.
func Find(dirs []string) (string, []string) {
	candidates := Candidates(dirs)
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p, candidates
		}
	}
	return "", candidates
}
