package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"charm.land/bubbles/v2/spinner"
	"github.com/mattn/go-isatty"
)

// progressThreshold is the file count below which no spinner is shown.
const progressThreshold = 50

// startProgress shows a spinner on stderr while many files are linted.
// The returned function stops it and clears the line.
func startProgress(files int, verbose bool) func() {
	if files < progressThreshold || verbose || !isatty.IsTerminal(os.Stderr.Fd()) {
		return func() {}
	}
	return spin(os.Stderr, progressMessage(files))
}

func progressMessage(files int) string {
	return fmt.Sprintf("Linting %d files", files)
}

func spin(w io.Writer, msg string) func() {
	sp := spinner.Line
	frames := sp.Frames
	interval := sp.FPS
	if len(frames) == 0 {
		frames = []string{"-"}
	}
	if interval <= 0 {
		interval = 120 * time.Millisecond
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		frame := 0
		for {
			select {
			case <-stop:
				// Clear the line so subsequent output starts cleanly.
				_, _ = fmt.Fprint(w, "\r\033[2K")
				close(done)
				return
			case <-ticker.C:
				_, _ = fmt.Fprintf(w, "\r%s %s", frames[frame%len(frames)], msg)
				frame++
			}
		}
	}()

	return func() {
		close(stop)
		<-done
	}
}
