package supervise

import (
	"context"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/shirou/gopsutil/v3/process"
)

// Guard is a named precondition checked before a process is spawned.
// The first guard whose Check returns an error aborts the start; no
// process is created.
type Guard struct {
	Name  string
	Check func(ctx context.Context) error
}

// ExecutableGuard verifies that path exists, is a regular file, and
// has an execute bit set.
func ExecutableGuard(path string) Guard {
	return Guard{
		Name: "executable",
		Check: func(_ context.Context) error {
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return fmt.Errorf("%s is not a regular file", path)
			}
			if info.Mode().Perm()&0111 == 0 {
				return fmt.Errorf("%s is not executable", path)
			}
			return nil
		},
	}
}

// LockGuard refuses to start while another process holds an
// exclusive advisory lock on path. The probe lock is released
// immediately; the guard only answers "is someone else already
// running", it does not hold the lock for the run.
func LockGuard(path string) Guard {
	return Guard{
		Name: "lockfile",
		Check: func(_ context.Context) error {
			fl := flock.New(path)
			ok, err := fl.TryLock()
			if err != nil {
				return fmt.Errorf("probing lock %s: %w", path, err)
			}
			if !ok {
				return fmt.Errorf("lock %s is held by another process", path)
			}
			return fl.Unlock()
		},
	}
}

// NoProcessGuard refuses to start while a process with the given name
// is already running. Processes whose name cannot be read (typically
// permission denied on other users' entries) are ignored.
func NoProcessGuard(name string) Guard {
	return Guard{
		Name: "no-process",
		Check: func(ctx context.Context) error {
			procs, err := process.ProcessesWithContext(ctx)
			if err != nil {
				return fmt.Errorf("listing processes: %w", err)
			}
			for _, p := range procs {
				n, err := p.NameWithContext(ctx)
				if err != nil {
					continue
				}
				if n == name {
					return fmt.Errorf("process %q already running (pid %d)", name, p.Pid)
				}
			}
			return nil
		},
	}
}
