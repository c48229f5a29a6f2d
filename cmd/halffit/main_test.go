// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/require"

	"github.com/wundergraph/go-halffit"
	"github.com/wundergraph/go-halffit/internal/config"
	"github.com/wundergraph/go-halffit/internal/script"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCommandFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.txt")
	require.NoError(t, os.WriteFile(path, []byte("reserve a 3250\nreserve b 24\nrelease a\ncheck\n"), 0o600))

	out, _, err := execute(t, "", "run", path)
	require.NoError(t, err)
	require.Equal(t, "a = 0 (102 units, 3.2 KiB)\nb = 102 (1 unit, 32 B)\na released\nok\n", out)
}

func TestRunCommandStdin(t *testing.T) {
	out, _, err := execute(t, "reserve a 100\nstats\n", "run", "-")
	require.NoError(t, err)
	require.Contains(t, out, "reserved  128 B")
}

func TestRunCommandErrors(t *testing.T) {
	_, _, err := execute(t, "", "run", filepath.Join(t.TempDir(), "missing"))
	require.ErrorContains(t, err, "open script")

	_, _, err = execute(t, "release x\n", "run")
	require.ErrorIs(t, err, script.ErrName)

	_, _, err = execute(t, "", "run", "--log-format", "xml")
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunCommandDebugLog(t *testing.T) {
	_, errOut, err := execute(t, "reserve a 100\nrelease a\n", "run", "--log-level", "debug")
	require.NoError(t, err)
	require.Contains(t, errOut, "msg=split")
	require.Contains(t, errOut, "msg=coalesce")
	require.Contains(t, errOut, `msg="script finished"`)
}

type fakePrompter struct {
	lines   []string
	history []string
}

func (f *fakePrompter) Prompt(string) (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	if line == "^C" {
		return "", liner.ErrPromptAborted
	}
	return line, nil
}

func (f *fakePrompter) AppendHistory(s string) {
	f.history = append(f.history, s)
}

func TestShellLoop(t *testing.T) {
	var out, errOut bytes.Buffer
	in := script.NewInterpreter(halffit.NewConcurrent(halffit.New()), &out)
	p := &fakePrompter{lines: []string{
		"reserve a 24",
		"",
		"^C",
		"bogus",
		"release nope",
		"release a",
		"exit",
		"reserve never 1",
	}}

	require.NoError(t, shell(p, in, &errOut))
	require.Equal(t, "a = 0 (1 unit, 32 B)\na released\n", out.String())
	require.Contains(t, errOut.String(), `unknown command "bogus"`)
	require.Contains(t, errOut.String(), `"nope" is not reserved`)
	require.Equal(t, []string{"reserve a 24", "release nope", "release a"}, p.history)
	require.Equal(t, []string{"reserve never 1"}, p.lines)
}

func TestServeMetrics(t *testing.T) {
	// The random port is only known from the startup log record.
	var logs bytes.Buffer
	a := &app{
		cfg: config.Config{Metrics: config.Metrics{Addr: "127.0.0.1:0"}},
		log: slog.New(slog.NewTextHandler(&logs, nil)),
	}
	arena := halffit.NewConcurrent(halffit.New())
	_, ok := arena.Reserve(100)
	require.True(t, ok)

	stop, err := serveMetrics(a, arena)
	require.NoError(t, err)
	defer stop()

	addr := logs.String()
	i := strings.Index(addr, "addr=")
	require.GreaterOrEqual(t, i, 0)
	addr = strings.TrimSpace(addr[i+len("addr="):])

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "halffit_reserved_bytes 128")
}
