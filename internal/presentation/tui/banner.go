package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`  _                                  _`,
	` | |__  _ __ _____      ___ __  (_) __ _ _ __`,
	` | '_ \| '__/ _ \ \ /\ / / '_ \ | |/ _' | '_ \`,
	` | |_) | | | (_) \ V  V /| | | || | (_| | | | |`,
	` |_.__/|_|  \___/ \_/\_/ |_| |_|/ |\__,_|_| |_|`,
}

var bannerColors = []string{"#34d399", "#2dd4bf", "#22d3ee", "#38bdf8", "#60a5fa"}

// PrintBanner writes the brownian banner to w, coloured for the terminal's profile.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i%len(bannerColors)])))
	}
	fmt.Fprintln(w)
}
