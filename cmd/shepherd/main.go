package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"shepherd/internal/config"
	"shepherd/internal/wsstream"
	"shepherd/pkg/supervise"
)

var (
	configPath string
	verbose    bool

	grace     time.Duration
	usePTY    bool
	replies   []string
	askPrompt string
	matchExpr string
	listen    string
	lockFile  string

	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "shepherd",
	Short: "Shepherd - supervised external-process execution",
	Long: `Shepherd runs a child process under a supervisor that merges its
stdout and stderr into one event stream, can auto-reply to output
patterns, and always tears the process down cleanly (SIGTERM, grace
period, SIGKILL) on exit or interrupt.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

var runCmd = &cobra.Command{
	Use:   "run <executable> [args...]",
	Short: "Run a process and stream its merged output",
	Long: `Run a process under supervision and stream every output line,
prefixed with its channel, until the process exits or shepherd is
interrupted.

Responders can auto-reply to output: --reply takes "glob=text" pairs
and writes the text to the child's stdin whenever a line matches the
glob. --ask prompts for a secret up front (never echoed) and replies
with it when the given pattern appears.

With --match only the part of each line matching the regular
expression is delivered, which is handy for extracting a URL or ID
from a chatty process.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStreaming,
}

var execCmd = &cobra.Command{
	Use:   "exec <executable> [args...]",
	Short: "Run a process to completion and print its captured output",
	Long: `Run a process under supervision, wait for it to finish, and print
the captured stdout. The child's exit code becomes shepherd's exit
code.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInstant,
}

// resolveCommand decides what to run. When the config names a binary,
// all positional arguments belong to the child; otherwise the first
// one is the executable.
func resolveCommand(cfg *config.Config, args []string) supervise.Command {
	if cfg.Binary != "" {
		return supervise.Command{Path: cfg.Binary, Args: args}
	}
	return supervise.Command{Path: args[0], Args: args[1:]}
}

func buildOptions(cfg *config.Config, path string) ([]supervise.Option, error) {
	if lockFile != "" {
		cfg.LockFile = lockFile
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	if grace > 0 {
		opts = append(opts, supervise.WithGracePeriod(grace))
	}
	if usePTY {
		opts = append(opts, supervise.WithPTY())
	}

	// Guards only make sense for concrete paths; bare names are
	// resolved through PATH by the spawn itself.
	if strings.Contains(path, "/") {
		opts = append(opts, supervise.WithGuards(supervise.ExecutableGuard(path)))
	}

	for _, pair := range replies {
		pattern, reply, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --reply %q, want glob=text", pair)
		}
		responder, err := supervise.ReplyGlob(pattern, reply)
		if err != nil {
			return nil, fmt.Errorf("invalid --reply pattern %q: %w", pattern, err)
		}
		opts = append(opts, supervise.WithResponders(responder))
	}

	if askPrompt != "" {
		fmt.Fprintf(os.Stderr, "reply to send on %q: ", askPrompt)
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading secret: %w", err)
		}
		opts = append(opts, supervise.WithResponders(supervise.ReplyWhen(askPrompt, string(secret))))
	}

	if matchExpr != "" {
		re, err := regexp.Compile(matchExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid --match expression: %w", err)
		}
		opts = append(opts, supervise.WithChunker(supervise.MatchChunker(re)))
	}

	return opts, nil
}

func runStreaming(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	command := resolveCommand(cfg, args)
	opts, err := buildOptions(cfg, command.Path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sup := supervise.New(command, opts...)
	h, err := sup.Start(ctx)
	if err != nil {
		return err
	}
	defer sup.Stop()

	if listen != "" {
		if err := serveStream(ctx, h); err != nil {
			return err
		}
	} else {
		for ev := range h.Events() {
			fmt.Printf("[%s] %s\n", ev.Channel, ev.Text())
		}
	}

	sup.Stop()
	exitCode = h.ExitCode()
	if sig := h.Signal(); sig != "" {
		slog.Info("process ended by signal", "signal", sig)
		exitCode = 1
	}
	return nil
}

// serveStream exposes the run's event stream on one WebSocket
// endpoint and returns once the first client's session ends or the
// context is cancelled.
func serveStream(ctx context.Context, h *supervise.Handle) error {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	var once sync.Once
	done := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = wsstream.Stream(r.Context(), conn, h, wsstream.Options{RenderHTML: true})
		once.Do(func() { close(done) })
	})

	srv := &http.Server{Addr: listen, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("stream server failed", "error", err)
			once.Do(func() { close(done) })
		}
	}()
	slog.Info("streaming on websocket", "addr", listen, "path", "/ws")

	select {
	case <-done:
	case <-ctx.Done():
	}
	return srv.Shutdown(context.Background())
}

func runInstant(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	command := resolveCommand(cfg, args)
	opts, err := buildOptions(cfg, command.Path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := supervise.Run(ctx, command, opts...)
	if err != nil {
		return err
	}

	if res.Stdout != "" {
		fmt.Println(res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprintln(os.Stderr, res.Stderr)
	}
	exitCode = res.ExitCode
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file with engine defaults")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	for _, c := range []*cobra.Command{runCmd, execCmd} {
		c.Flags().DurationVar(&grace, "grace", 0, "SIGTERM-to-SIGKILL grace period (default from config, 2s)")
		c.Flags().BoolVar(&usePTY, "pty", false, "Run the child under a pseudo-terminal")
		c.Flags().StringArrayVar(&replies, "reply", nil, "Auto-reply rule as glob=text; repeatable")
		c.Flags().StringVar(&askPrompt, "ask", "", "Prompt for a secret and reply with it when this pattern appears")
		c.Flags().StringVar(&matchExpr, "match", "", "Deliver only the part of each line matching this regexp")
		c.Flags().StringVar(&lockFile, "lock", "", "Refuse to start while this lock file is held")
	}
	runCmd.Flags().StringVar(&listen, "listen", "", "Serve the event stream on this address via WebSocket instead of printing")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(execCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
