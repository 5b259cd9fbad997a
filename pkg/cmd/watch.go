/*
Copyright 2025 David Arnold
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

const (
	clearScreen     = "\033[2J\033[H"
	timestampLayout = "2006-01-02 15:04:05"
)

// runWatch redraws the node table every interval until interrupted. Fetch
// failures are reported and retried on the next tick.
func (o *NodeOptions) runWatch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	current := o.client.CurrentContext(ctx)
	fmt.Fprintf(o.Out, "Watching nodes in context '%s' (press Ctrl+C to stop)...\n", current)
	fmt.Fprintf(o.Out, "Refresh interval: %d seconds\n\n", o.watchInterval)

	for {
		o.refresh(ctx, current)

		select {
		case <-ctx.Done():
			fmt.Fprint(o.Out, "\n\nWatch stopped.\n")
			return nil
		case <-time.After(o.interval):
		}
	}
}

func (o *NodeOptions) refresh(ctx context.Context, current string) {
	if isTerminal(o.Out) {
		fmt.Fprint(o.Out, clearScreen)
	}

	t, err := o.nodeTable(ctx)
	if err != nil {
		// interrupted mid-fetch; the loop exits on the next select
		if ctx.Err() != nil {
			return
		}
		log.Debugf("watch refresh failed: %v", err)
		ReportError(o.ErrOut, err)
		return
	}

	if len(t.Rows) == 0 && !o.output.Structured() {
		fmt.Fprintln(o.Out, noNodesMessage)
		return
	}
	if err := render(o.Out, t, o.output, o.noHeaders); err != nil {
		ReportError(o.ErrOut, err)
		return
	}
	if !o.output.Structured() {
		fmt.Fprintf(o.Out, "\nContext: %s\n", current)
		fmt.Fprintf(o.Out, "Last updated: %s\n", o.now().Format(timestampLayout))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
