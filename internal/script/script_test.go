// SPDX-License-Identifier: Apache-2.0

package script

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wundergraph/go-halffit"
)

func newInterpreter() (*Interpreter, *bytes.Buffer) {
	var out bytes.Buffer
	return NewInterpreter(halffit.NewConcurrent(halffit.New()), &out), &out
}

func TestParse(t *testing.T) {
	cmds, err := Parse(strings.NewReader(`
# scenario
reserve a 3250   # first block
  RELEASE a

dump
`))
	require.NoError(t, err)
	require.Equal(t, []Command{
		{Line: 3, Op: "reserve", Args: []string{"a", "3250"}},
		{Line: 4, Op: "release", Args: []string{"a"}},
		{Line: 6, Op: "dump", Args: []string{}},
	}, cmds)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   string
	}{
		{"unknown command", "alloc a 10", `line 1: syntax error: unknown command "alloc"`},
		{"missing size", "\nreserve a", "line 2: syntax error: reserve takes 2 argument(s), got 1"},
		{"extra argument", "dump all", "line 1: syntax error: dump takes 0 argument(s), got 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.script))
			require.ErrorIs(t, err, ErrSyntax)
			require.EqualError(t, err, tt.want)
		})
	}
}

func TestRunScenario(t *testing.T) {
	in, out := newInterpreter()

	err := in.Run(strings.NewReader(`
reserve a 3250
reserve b 24
reserve c 515
reserve d 2KiB
reserve e 32768
reserve f 64KiB
release a
release b
release c
release d
check
`))
	require.NoError(t, err)
	require.Equal(t, `a = 0 (102 units, 3.2 KiB)
b = 102 (1 unit, 32 B)
c = 103 (17 units, 544 B)
d = 120 (65 units, 2.0 KiB)
e: none (no free block holds 32 KiB)
f: none (64 KiB exceeds the largest size class)
a released
b released
c released
d released
ok
`, out.String())
}

func TestRunDumpAndBins(t *testing.T) {
	in, out := newInterpreter()

	require.NoError(t, in.Run(strings.NewReader("reserve x 100\nreserve y 24\nrelease x\n")))
	out.Reset()

	require.NoError(t, in.Run(strings.NewReader("dump\nbins\n")))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	require.Contains(t, lines[0], "free")
	require.Contains(t, lines[1], "used")
	require.True(t, strings.HasSuffix(lines[1], "  y"))
	require.Contains(t, lines[2], "1019 units")
	require.Equal(t, "bin  1: 0(4)", lines[3])
	require.Equal(t, "bin  9: 5(1019)", lines[4])
}

func TestRunStatsAndReset(t *testing.T) {
	in, out := newInterpreter()

	require.NoError(t, in.Run(strings.NewReader("reserve x 100\nstats\nreset\nreserve x 100\n")))
	require.Contains(t, out.String(), "reserved  128 B (peak 128 B)")
	require.Contains(t, out.String(), "arena reset")
	require.Contains(t, out.String(), "x = 0 (4 units, 128 B)")
}

func TestRunNameErrors(t *testing.T) {
	in, _ := newInterpreter()

	err := in.Run(strings.NewReader("release ghost"))
	require.ErrorIs(t, err, ErrName)
	require.EqualError(t, err, `line 1: release: bad name: "ghost" is not reserved`)

	err = in.Run(strings.NewReader("reserve a 1\nreserve a 2"))
	require.ErrorIs(t, err, ErrName)

	err = in.Run(strings.NewReader("reserve b lots"))
	require.ErrorIs(t, err, ErrSyntax)
}
