package supervise

import (
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// spawnPTY starts proc attached to a new pseudo-terminal and returns
// the master side. The master is both the output stream and the
// child's stdin; closing it during teardown unblocks the reader and
// signals end of input in one move.
func spawnPTY(proc *exec.Cmd) (*os.File, error) {
	ptmx, err := pty.Start(proc)
	if err != nil {
		return nil, err
	}
	// A sane default size; interactive callers can ignore it, line
	// oriented children just need the terminal to exist.
	_ = pty.Setsize(ptmx, &pty.Winsize{Rows: 24, Cols: 80})
	return ptmx, nil
}
