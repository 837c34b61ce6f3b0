package tool

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_String(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{
			name: "plain arguments",
			cmd:  Command{Name: "fastp", Args: []string{"--in1", "a.fq.gz", "--thread", "4"}},
			want: "fastp --in1 a.fq.gz --thread 4",
		},
		{
			name: "argument with space is quoted",
			cmd:  Command{Name: "spades.py", Args: []string{"-o", "my out/spades_x"}},
			want: "spades.py -o 'my out/spades_x'",
		},
		{
			name: "embedded single quote",
			cmd:  Command{Name: "echo", Args: []string{"it's"}},
			want: `echo 'it'\''s'`,
		},
		{
			name: "empty argument",
			cmd:  Command{Name: "echo", Args: []string{""}},
			want: "echo ''",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestDefaultExecutor_Run_Success(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code, err := NewExecutor().Run(context.Background(),
		Command{Name: "sh", Args: []string{"-c", "echo out; echo err 1>&2"}}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "out\n", stdout.String())
	assert.Equal(t, "err\n", stderr.String())
}

func TestDefaultExecutor_Run_ExitCode(t *testing.T) {
	code, err := NewExecutor().Run(context.Background(),
		Command{Name: "sh", Args: []string{"-c", "exit 3"}}, io.Discard, io.Discard)

	require.NoError(t, err, "a non-zero exit is not a start failure")
	assert.Equal(t, 3, code)
}

func TestDefaultExecutor_Run_MissingBinary(t *testing.T) {
	code, err := NewExecutor().Run(context.Background(),
		Command{Name: "definitely-not-a-real-tool-xyz"}, io.Discard, io.Discard)

	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, err.Error(), "failed to run definitely-not-a-real-tool-xyz")
}

func TestDefaultExecutor_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, err := NewExecutor().Run(ctx, Command{Name: "sleep", Args: []string{"5"}}, io.Discard, io.Discard)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, code)
}

func TestLocator_CheckAll(t *testing.T) {
	locate := StaticLocator("fastp", "seqtk")

	got := locate.CheckAll([]string{"fastp", "spades.py", "seqtk"})

	require.Len(t, got, 3)
	assert.True(t, got[0].Found())
	assert.Equal(t, "/usr/bin/fastp", got[0].Path)
	assert.False(t, got[1].Found())
	assert.Equal(t, "spades.py", got[1].Name)
	assert.True(t, got[2].Found(), "CheckAll keeps going after a missing tool")
}

func TestLookPath_FindsShell(t *testing.T) {
	path, err := LookPath("sh")
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}

func TestMockExecutor(t *testing.T) {
	mock := &MockExecutor{
		ExitCodes: map[string]int{"spades.py": 2},
		Errors:    map[string]error{"broken": errors.New("boom")},
		Handler: func(cmd Command, stdout, stderr io.Writer) error {
			_, err := io.WriteString(stdout, cmd.Name)
			return err
		},
	}
	var out bytes.Buffer
	ctx := context.Background()

	code, err := mock.Run(ctx, Command{Name: "fastp"}, &out, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = mock.Run(ctx, Command{Name: "spades.py"}, &out, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, code)

	_, err = mock.Run(ctx, Command{Name: "broken"}, &out, io.Discard)
	require.Error(t, err)

	assert.Equal(t, []string{"fastp", "spades.py", "broken"}, mock.Names())
	assert.Equal(t, "fastpspades.py", out.String())
}
