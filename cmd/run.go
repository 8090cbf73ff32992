/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/allbin/switchhub"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <workflow> <port>...",
	Short: "Run a workflow on one or more ports",
	Long: `Run a workflow headless on one or more serial ports at once.

Each port gets its own engine. The console traffic of every port is
streamed to stdout, prefixed with the port name when more than one port
is used. Ctrl+C stops all engines at their next poll.

The command exits non-zero when any port fails.

Example usage:
  switchhub run show-version /dev/ttyUSB0
  switchhub run password-recovery /dev/ttyUSB0 /dev/ttyUSB1 --baud 9600`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveWorkflowPath(args[0])
		wf, err := switchhub.LoadWorkflow(path)
		if err != nil {
			return err
		}
		ports := args[1:]

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := switchhub.NewRegistry(cfg.EngineOptions(logger)...)
		for _, port := range ports {
			if _, err := reg.Start(port, wf); err != nil {
				reg.StopAll()
				return fmt.Errorf("starting %s: %w", port, err)
			}
		}
		logger.WithFields(logrus.Fields{
			"workflow": wf.Name,
			"ports":    len(ports),
		}).Info("workflow launched")

		go func() {
			<-ctx.Done()
			reg.StopAll()
		}()

		streamUntilDone(reg, ports)
		err = reg.WaitAll(context.Background())
		printSummary(reg, ports)
		if err != nil {
			return fmt.Errorf("workflow %q failed", wf.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// streamUntilDone copies every engine's log to stdout until all engines
// have returned.
func streamUntilDone(reg *switchhub.Registry, ports []string) {
	streamers := make(map[string]*logStreamer, len(ports))
	for _, port := range ports {
		prefix := ""
		if len(ports) > 1 {
			prefix = mutedStyle.Render("["+filepath.Base(port)+"]") + " "
		}
		streamers[port] = newLogStreamer(os.Stdout, prefix)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		done := true
		for _, port := range ports {
			e, ok := reg.Engine(port)
			if !ok {
				continue
			}
			finished := e.Phase().Done()
			streamers[port].update(e.State().Log, finished)
			done = done && finished
		}
		if done {
			return
		}
		<-ticker.C
	}
}

func printSummary(reg *switchhub.Registry, ports []string) {
	fmt.Println()
	for _, port := range ports {
		e, ok := reg.Engine(port)
		if !ok {
			continue
		}
		st := e.State()
		switch e.Phase() {
		case switchhub.PhaseCompleted:
			fmt.Printf("%s %s %s\n", successStyle.Render("✓"), port, st.Message)
		case switchhub.PhaseFailed:
			fmt.Printf("%s %s %s\n", errorStyle.Render("✗"), port, st.Message)
		default:
			fmt.Printf("%s %s %s\n", infoStyle.Render("■"), port, e.Phase())
		}
		fmt.Println(mutedStyle.Render("  run " + e.ID()))
	}
}
