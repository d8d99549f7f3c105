package supervise

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunCapturesVersionStyleOutput(t *testing.T) {
	res, err := Run(context.Background(), Command{
		Path: "printf",
		Args: []string{"1.2.3"},
	})
	require.NoError(t, err)
	require.Equal(t, "1.2.3", res.Stdout)
	require.Equal(t, 0, res.ExitCode)
}

func TestRunJoinsLines(t *testing.T) {
	res, err := Run(context.Background(), shell("echo a; echo b"))
	require.NoError(t, err)
	require.Equal(t, "a\nb", res.Stdout)
}

func TestRunNonZeroExitIsData(t *testing.T) {
	res, err := Run(context.Background(), shell("echo oops 1>&2; exit 3"))
	require.NoError(t, err, "a non-zero exit code is not an error")
	require.Equal(t, 3, res.ExitCode)
	require.Equal(t, "oops", res.Stderr)
	require.Empty(t, res.Stdout)
}

func TestRunCustomReducer(t *testing.T) {
	counts := map[OutputChannel]int{}
	res, err := Run(context.Background(), shell("echo a; echo b; echo c 1>&2"),
		WithReducer(func(res *RunResult, ev ProcessOutput) {
			counts[ev.Channel]++
			res.Stdout += "|" + ev.Text()
		}),
	)
	require.NoError(t, err)
	require.Equal(t, 2, counts[Stdout])
	require.Equal(t, 1, counts[Stderr])
	require.Contains(t, res.Stdout, "|a")
	require.Equal(t, 0, res.ExitCode)
}

func TestRunSpawnFailurePropagates(t *testing.T) {
	_, err := Run(context.Background(), Command{Path: "/does/not/exist", Args: []string{"x"}})
	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
}

func TestRunRespondersStillFire(t *testing.T) {
	res, err := Run(context.Background(),
		shell(`echo "CONFIRM?"; read ans; echo "answer=$ans"`),
		WithResponders(ReplyWhen("CONFIRM?", "yes")),
	)
	require.NoError(t, err)
	require.Contains(t, res.Stdout, "answer=yes")
}
