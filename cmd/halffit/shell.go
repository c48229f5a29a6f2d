// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/wundergraph/go-halffit"
	"github.com/wundergraph/go-halffit/internal/script"
	"github.com/wundergraph/go-halffit/metrics"
)

var shellCommands = []string{"reserve ", "release ", "dump", "bins", "stats", "check", "reset", "help", "exit"}

func newShellCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Operate an arena interactively",
		Long: `The shell command starts an interactive prompt accepting the same commands
as run. Type exit or press Ctrl-D to leave.

With --metrics-addr the arena statistics are served for Prometheus at
/metrics while the shell is open.

Example:
  halffit shell --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			arena := halffit.NewConcurrent(halffit.New(halffit.WithLogger(a.log)))

			if a.cfg.Metrics.Addr != "" {
				stop, err := serveMetrics(a, arena)
				if err != nil {
					return err
				}
				defer stop()
			}

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)
			line.SetCompleter(func(prefix string) []string {
				var out []string
				for _, c := range shellCommands {
					if strings.HasPrefix(c, strings.ToLower(prefix)) {
						out = append(out, c)
					}
				}
				return out
			})

			return shell(line, script.NewInterpreter(arena, cmd.OutOrStdout()), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

// prompter is the part of *liner.State used by the shell loop.
type prompter interface {
	Prompt(string) (string, error)
	AppendHistory(string)
}

func shell(p prompter, in *script.Interpreter, errOut io.Writer) error {
	for n := 1; ; n++ {
		text, err := p.Prompt("halffit> ")
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return fmt.Errorf("read command: %w", err)
		}
		if t := strings.TrimSpace(text); t == "exit" || t == "quit" {
			return nil
		}

		cmd, ok, err := script.ParseLine(n, text)
		if err != nil {
			fmt.Fprintln(errOut, err)
			continue
		}
		if !ok {
			continue
		}
		p.AppendHistory(text)
		if err := in.Exec(cmd); err != nil {
			fmt.Fprintln(errOut, err)
		}
	}
}

func serveMetrics(a *app, arena *halffit.Concurrent) (stop func(), err error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics.NewCollector(arena, nil)); err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	ln, err := net.Listen("tcp", a.cfg.Metrics.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", a.cfg.Metrics.Addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server stopped", "error", err)
		}
	}()
	a.log.Info("serving metrics", "addr", ln.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.log.Warn("metrics server shutdown", "error", err)
		}
	}, nil
}
