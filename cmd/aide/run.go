package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/aide/internal/engine"
	"github.com/ShayCichocki/aide/internal/llm"
	"github.com/ShayCichocki/aide/internal/notify"
	"github.com/ShayCichocki/aide/internal/scheduler"
)

var runVerbose bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the background polling loop",
	Long: `Start the loop that advances tasks: an immediate tick for login-triggered
tasks, then a poll of every due task on the configured interval. Reminders
and questions surface here; messages needing approval are announced and
wait for 'aide approve' or 'aide review'.

Stop with Ctrl-C. In-flight ticks finish before the process exits.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print every task tick")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	// Without a generator the loop still runs; only reply judging is
	// disabled (the first reply satisfies a wait).
	var gen llm.Generator
	if client, err := a.generator(); err == nil {
		gen = client
	} else {
		color.Yellow("warning: %v (reply judging disabled)", err)
	}

	logger, err := scheduler.NewDebugLogger(a.cfg.Scheduler.LogPath)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	defer logger.Close()

	sink := notify.NewChannelSink(64)
	emitter := scheduler.NewEmitter(64)

	exec := engine.New(engine.Config{
		Generator:    gen,
		Messenger:    consoleMessenger{},
		Sink:         sink,
		Logger:       logger,
		MaxFollowups: a.cfg.Messaging.MaxFollowups,
	})
	sched := scheduler.New(scheduler.Config{
		Store:     a.tasks,
		Executor:  exec,
		Interval:  a.cfg.Scheduler.PollInterval,
		ImportDir: a.cfg.Scheduler.ImportDir,
		Emitter:   emitter,
		Logger:    logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go drainNotifications(ctx, sink)
	go drainEvents(ctx, emitter)

	fmt.Printf("aide polling every %s (Ctrl-C to stop)\n", a.cfg.Scheduler.PollInterval)
	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Println("\nstopped")
	return nil
}

// drainNotifications prints user-facing notifications as they arrive.
func drainNotifications(ctx context.Context, sink *notify.ChannelSink) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-sink.Notifications():
			printNotification(n)
		}
	}
}

// printNotification renders one notification with a kind-appropriate color.
func printNotification(n notify.Notification) {
	switch n.Kind {
	case notify.KindReminder:
		color.Green("⏰ %s", n.Message)
	case notify.KindQuestion:
		color.Yellow("? %s", n.Message)
		color.Yellow("  answer with: aide answer %s \"...\"", n.TaskID)
	case notify.KindAttention:
		color.Red("! %s", n.Message)
		color.Red("  respond with: aide answer %s \"...\"", n.TaskID)
	default:
		fmt.Println(n.Message)
	}
}

// drainEvents reports scheduler lifecycle events.
func drainEvents(ctx context.Context, emitter *scheduler.Emitter) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-emitter.Events():
			printEvent(event)
		}
	}
}

// printEvent renders one scheduler event, honoring the verbose flag.
func printEvent(event scheduler.Event) {
	switch event.Type {
	case scheduler.EventTaskCompleted:
		color.Green("✓ task %s completed", event.TaskID)
	case scheduler.EventTaskSuspended:
		color.Yellow("… task %s is %s", event.TaskID, event.Status)
		if event.Status == "waiting_approval" {
			color.Yellow("  review with: aide review")
		}
	case scheduler.EventTickError:
		color.Red("tick error (%s): %s", event.TaskID, event.Message)
	case scheduler.EventTaskImported:
		fmt.Printf("imported task %s from %s\n", event.TaskID, event.Message)
	case scheduler.EventTaskTicked:
		if runVerbose {
			fmt.Printf("ticked %s (%s)\n", event.TaskID, event.Status)
		}
	}
}
