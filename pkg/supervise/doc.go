// Package supervise runs external processes under a supervisor that
// guarantees deterministic teardown on every exit path.
//
// A Supervisor owns exactly one run of one OS process. It spawns the
// process with stdin, stdout and stderr captured as pipes, reads both
// output streams through a configurable chunking policy, and merges
// them into a single ordered sequence of tagged ProcessOutput events
// delivered on a bounded channel. Responders can inspect every chunk
// before delivery and write replies back to the process's stdin,
// which makes simple interactive automation ("answer the password
// prompt") possible without a full expect implementation.
//
// The central guarantee is cleanup: whether the consumer drains all
// output, abandons iteration, or cancels its context, stopping the
// supervisor closes stdin, sends SIGTERM, waits a grace period,
// escalates to SIGKILL, and joins all background readers. No zombie
// processes, no leaked goroutines.
//
// Typical streaming use:
//
//	sup := supervise.New(supervise.Command{
//		Path: "/usr/bin/some-daemon",
//		Args: []string{"serve", "--foreground"},
//	})
//	handle, err := sup.Start(ctx)
//	if err != nil {
//		return err
//	}
//	defer sup.Stop()
//	for ev := range handle.Events() {
//		fmt.Printf("[%s] %s\n", ev.Channel, ev.Text())
//	}
//
// For run-to-completion callers (version queries and the like), Run
// drains everything and returns the captured text plus the exit code:
//
//	res, err := supervise.Run(ctx, supervise.Command{
//		Path: binary,
//		Args: []string{"version"},
//	})
package supervise
