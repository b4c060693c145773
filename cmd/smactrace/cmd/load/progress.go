package load

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/agentstation/smactrace/pkg/reconcile"
)

// progress renders a bar sized on the first callback, once the number of
// matched files is known.
type progress struct {
	once sync.Once
	bar  *progressbar.ProgressBar
	w    io.Writer
	desc string
}

func (p *progress) update(_, total int, _ string) {
	p.once.Do(func() {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(p.desc),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	})
	_ = p.bar.Add(1)
}

// Progress returns a per-file progress option drawing on w, or nil when w
// is not a terminal or quiet is set.
func Progress(w io.Writer, quiet bool, desc string) reconcile.Option {
	if quiet {
		return nil
	}
	f, ok := w.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return nil
	}
	p := &progress{w: w, desc: desc}
	return reconcile.WithProgress(p.update)
}

// appendProgress adds the progress option when one applies.
func appendProgress(opts []reconcile.Option, w io.Writer, quiet bool, desc string) []reconcile.Option {
	if opt := Progress(w, quiet, desc); opt != nil {
		opts = append(opts, opt)
	}
	return opts
}
