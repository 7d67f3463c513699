package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`                            _    __ _`, "#818cf8"},
	{`  _ __  _ __ ___  _ __ ___ | |_ / _| | _____      __`, "#a78bfa"},
	{` | '_ \| '__/ _ \| '_ ' _ \| __| |_| |/ _ \ \ /\ / /`, "#c084fc"},
	{` | |_) | | | (_) | | | | | | |_|  _| | (_) \ V  V /`, "#e879f9"},
	{` | .__/|_|  \___/|_| |_| |_|\__|_| |_|\___/ \_/\_/`, "#f472b6"},
	{` |_|`, "#fb7185"},
}

// PrintBanner writes the colored promptflow banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w, out.String("  "+version).Faint())
	fmt.Fprintln(w)
}
