package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Conduit banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   ___              _       _ _   ", "#22d3ee"},
		{"  / __|___ _ _  __| |_  _(_) |_  ", "#38bdf8"},
		{" | (__/ _ \\ ' \\/ _` | || | |  _| ", "#60a5fa"},
		{"  \\___\\___/_||_\\__,_|\\_,_|_|\\__| ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status colors an outcome status for terminal output.
func Status(status string) string {
	p := termenv.ColorProfile()
	color := "#f87171"
	switch status {
	case "success", "ok":
		color = "#4ade80"
	case "error_handled":
		color = "#facc15"
	}
	return termenv.String(status).Foreground(p.Color(color)).Bold().String()
}
