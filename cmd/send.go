/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/allbin/switchhub"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <port> [command]",
	Short: "Send a single command to a device console",
	Long: `Send one command to a device console and print what it answers.

The command is terminated with a carriage return. By default the reply is
collected for two seconds; --expect waits for a pattern instead and fails
when it does not show up within --timeout seconds. Pager prompts are
answered automatically either way.

Without a command argument the command is read from a prompt.

Example usage:
  switchhub send /dev/ttyUSB0 "show version"
  switchhub send /dev/ttyUSB0 "show running-config" --expect "^end$" --timeout 30
  switchhub send /dev/ttyUSB0  # Interactive mode`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		portPath := args[0]

		var command string
		if len(args) == 2 {
			command = args[1]
		} else {
			command = promptForCommand()
		}
		if strings.TrimSpace(command) == "" {
			return fmt.Errorf("nothing to send")
		}

		expect, _ := cmd.Flags().GetString("expect")
		timeout, _ := cmd.Flags().GetInt("timeout")

		wf := switchhub.ManualWorkflow(command)
		step := &wf.Steps[0]
		if cmd.Flags().Changed("timeout") {
			step.TimeoutSeconds = timeout
		}
		if expect != "" {
			step.ExpectPattern = &expect
			if !cmd.Flags().Changed("timeout") {
				step.TimeoutSeconds = switchhub.DefaultTimeoutSeconds
			}
			if _, err := step.Pattern(); err != nil {
				return fmt.Errorf("invalid --expect pattern: %w", err)
			}
		}

		e, err := switchhub.New(portPath, wf, cfg.EngineOptions(logger)...)
		if err != nil {
			return err
		}

		fmt.Printf("%s Sending to %s...\n", infoStyle.Render("⚡"), portPath)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runErr := e.Run(ctx)
		newLogStreamer(os.Stdout, "").update(e.State().Log, true)
		if runErr != nil {
			return fmt.Errorf("%s %w", errorStyle.Render("✗"), runErr)
		}
		if e.Phase() == switchhub.PhaseCompleted {
			fmt.Printf("%s Done\n", successStyle.Render("✓"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringP("expect", "e", "", "Wait for this pattern instead of listening for a fixed time")
	sendCmd.Flags().IntP("timeout", "t", switchhub.ManualListenSeconds, "Seconds to listen, or to wait for --expect")
}

func promptForCommand() string {
	promptStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	fmt.Print(promptStyle.Render("Command to send: "))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return scanner.Text()
	}
	return ""
}
