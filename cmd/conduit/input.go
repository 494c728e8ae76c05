package main

import (
	"io"
	"os"
	"strings"

	"github.com/aretw0/conduit/internal/demo"
)

// readInput resolves a flag value: "-" reads stdin, "@path" reads a file and
// anything else is used as is.
func readInput(value string, stdin io.Reader) ([]byte, error) {
	switch {
	case value == "-":
		return io.ReadAll(stdin)
	case strings.HasPrefix(value, "@"):
		return os.ReadFile(strings.TrimPrefix(value, "@"))
	default:
		return []byte(value), nil
	}
}

// manifestSource returns the manifest document named by path, or the built-in demo.
func manifestSource(path string) (string, []byte, error) {
	if path == "" {
		return "built-in home demo", demo.Manifest(), nil
	}
	data, err := os.ReadFile(path)
	return path, data, err
}
