package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"Solvanity/internal/generator"
	"Solvanity/pkg/i18n"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// ConsoleProgress prints progress lines. On a terminal it rewrites a single
// line; otherwise each report is a new line.
type ConsoleProgress struct {
	mu      sync.Mutex
	out     io.Writer
	msgs    i18n.Messages
	inPlace bool
	dirty   bool
}

func NewConsoleProgress(out io.Writer, msgs i18n.Messages) *ConsoleProgress {
	p := &ConsoleProgress{out: out, msgs: msgs}
	if f, ok := out.(*os.File); ok {
		p.inPlace = term.IsTerminal(int(f.Fd()))
	}
	return p
}

func (p *ConsoleProgress) Report(pr generator.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := fmt.Sprintf(p.msgs.Progress,
		humanize.Comma(int64(pr.Total)),
		pr.Elapsed.Truncate(time.Millisecond),
		humanize.Comma(int64(pr.Rate)),
	)
	if p.inPlace {
		fmt.Fprintf(p.out, "\r\033[K%s", line)
		p.dirty = true
		return
	}
	fmt.Fprintln(p.out, line)
}

// Found prints a match and its elapsed time, as the search reports it.
func (p *ConsoleProgress) Found(address string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.breakLine()
	fmt.Fprintf(p.out, p.msgs.Found+"\n", address)
	fmt.Fprintf(p.out, p.msgs.Elapsed+"\n\n", elapsed.Truncate(time.Millisecond))
}

// Done terminates an in-place progress line.
func (p *ConsoleProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.breakLine()
}

func (p *ConsoleProgress) breakLine() {
	if p.dirty {
		fmt.Fprintln(p.out)
		p.dirty = false
	}
}
