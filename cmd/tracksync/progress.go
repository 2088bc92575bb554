package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"tracksync/internal/catalog"
	"tracksync/internal/pipeline"
)

// consoleProgress renders one progress bar per transferred track. On
// non-terminal output it degrades to a plain per-track line.
type consoleProgress struct {
	out io.Writer
	tty bool
	bar *progressbar.ProgressBar
}

func newConsoleProgress(out io.Writer) pipeline.Progress {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &consoleProgress{out: out, tty: tty}
}

func (p *consoleProgress) Start(track catalog.Track, totalBytes int64) io.Writer {
	if !p.tty {
		io.WriteString(p.out, track.String()+"\n")
		return io.Discard
	}
	p.bar = progressbar.NewOptions64(
		totalBytes,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(track.String()),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
	return p.bar
}

func (p *consoleProgress) Done(track catalog.Track) {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}
