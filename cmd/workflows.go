/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/allbin/switchhub"
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("40")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// workflowsCmd represents the workflows command
var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "Inspect workflow descriptions",
	Long: `List, show and validate workflow descriptions.

Workflows can be named by path or by file name without extension, in
which case they are looked up in the workflows directory.

Example usage:
  switchhub workflows list
  switchhub workflows show password-recovery
  switchhub workflows validate workflows/*.yaml
  switchhub workflows diff catalyst-factory-reset rommon-break`,
}

var workflowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the workflows in the workflows directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := switchhub.DiscoverWorkflows(cfg.WorkflowsDir)
		if err != nil {
			return fmt.Errorf("reading workflows directory: %w", err)
		}
		if len(files) == 0 {
			fmt.Printf("No workflows found in %s\n", cfg.WorkflowsDir)
			return nil
		}

		for _, path := range files {
			name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			wf, err := switchhub.LoadWorkflow(path)
			if err != nil {
				fmt.Printf("%s %-24s %s\n", errorStyle.Render("✗"), name, mutedStyle.Render(err.Error()))
				continue
			}
			fmt.Printf("%s %-24s %s (%d steps) %s\n",
				successStyle.Render("✓"), name, wf.Name, len(wf.Steps), mutedStyle.Render(wf.Description))
		}
		return nil
	},
}

var workflowsShowCmd = &cobra.Command{
	Use:   "show <workflow>",
	Short: "Show the steps of a workflow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := switchhub.LoadWorkflow(resolveWorkflowPath(args[0]))
		if err != nil {
			return err
		}

		fmt.Println(infoStyle.Render(wf.Name))
		if wf.Description != "" {
			fmt.Println(mutedStyle.Render(wf.Description))
		}
		fmt.Println()
		fmt.Println(renderSteps(wf))
		return nil
	},
}

var workflowsValidateCmd = &cobra.Command{
	Use:   "validate <workflow>...",
	Short: "Check that workflow descriptions load",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, arg := range args {
			path := resolveWorkflowPath(arg)
			if _, err := switchhub.LoadWorkflow(path); err != nil {
				fmt.Printf("%s %v\n", errorStyle.Render("✗"), err)
				failed++
				continue
			}
			fmt.Printf("%s %s\n", successStyle.Render("✓"), path)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d workflows are invalid", failed, len(args))
		}
		return nil
	},
}

var workflowsDiffCmd = &cobra.Command{
	Use:   "diff <workflow> <workflow>",
	Short: "Compare two workflows step by step",
	Long: `Compare two workflows after loading them, so a JSON and a YAML
description, or descriptions using different field spellings, only differ
where their behaviour does.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := resolveWorkflowPath(args[0]), resolveWorkflowPath(args[1])
		a, err := switchhub.LoadWorkflow(from)
		if err != nil {
			return err
		}
		b, err := switchhub.LoadWorkflow(to)
		if err != nil {
			return err
		}

		diff, err := diffWorkflows(a, b, from, to)
		if err != nil {
			return err
		}
		if diff == "" {
			fmt.Println(successStyle.Render("✓ workflows are equivalent"))
			return nil
		}
		for _, line := range difflib.SplitLines(diff) {
			line = strings.TrimSuffix(line, "\n")
			switch {
			case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
				fmt.Println(infoStyle.Render(line))
			case strings.HasPrefix(line, "+"):
				fmt.Println(successStyle.Render(line))
			case strings.HasPrefix(line, "-"):
				fmt.Println(errorStyle.Render(line))
			default:
				fmt.Println(mutedStyle.Render(line))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workflowsCmd)
	workflowsCmd.AddCommand(workflowsListCmd, workflowsShowCmd, workflowsValidateCmd, workflowsDiffCmd)
}

// diffWorkflows returns a unified diff of the canonical forms, or "" when
// they match.
func diffWorkflows(a, b *switchhub.Workflow, fromName, toName string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(describeWorkflow(a)),
		B:        difflib.SplitLines(describeWorkflow(b)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  2,
	})
}

// describeWorkflow prints a workflow one field per line with every alias
// and default resolved.
func describeWorkflow(wf *switchhub.Workflow) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "name: %s\n", wf.Name)
	fmt.Fprintf(&sb, "description: %s\n", wf.Description)
	for i := range wf.Steps {
		step := &wf.Steps[i]
		fmt.Fprintf(&sb, "step %d: %s\n", i+1, step.Name)
		fmt.Fprintf(&sb, "  status: %s\n", step.StatusText)
		fmt.Fprintf(&sb, "  command: %s\n", optional(step.Command))
		fmt.Fprintf(&sb, "  interrupt: %s\n", optional(step.Interrupt))
		fmt.Fprintf(&sb, "  expect: %s\n", optional(step.ExpectPattern))
		fmt.Fprintf(&sb, "  timeout: %ds\n", step.TimeoutSeconds)
		fmt.Fprintf(&sb, "  operator: %t (hold %ds)\n", step.RequirePhysicalInteract, step.HoldInteractTimer)
	}
	return sb.String()
}

func optional(s *string) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprintf("%q", *s)
}

// resolveWorkflowPath accepts a path or a bare name from the workflows
// directory. Unresolvable names are returned as given so loading reports
// them.
func resolveWorkflowPath(arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	if filepath.Ext(arg) != "" || strings.ContainsRune(arg, filepath.Separator) {
		return arg
	}
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		candidate := filepath.Join(cfg.WorkflowsDir, arg+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return filepath.Join(cfg.WorkflowsDir, arg+".json")
}

func renderSteps(wf *switchhub.Workflow) string {
	columns := []table.Column{
		table.NewColumn("n", "#", 3),
		table.NewColumn("name", "Step", 24),
		table.NewColumn("action", "Action", 28),
		table.NewColumn("expect", "Expect", 24),
		table.NewColumn("timeout", "Timeout", 8),
		table.NewColumn("interact", "Operator", 10),
	}

	rows := make([]table.Row, 0, len(wf.Steps))
	for i := range wf.Steps {
		step := &wf.Steps[i]
		expect := "-"
		if step.ExpectPattern != nil {
			expect = *step.ExpectPattern
		}
		interact := "-"
		if step.RequirePhysicalInteract {
			interact = "yes"
			if step.HoldInteractTimer > 0 {
				interact = fmt.Sprintf("hold %ds", step.HoldInteractTimer)
			}
		}
		rows = append(rows, table.NewRow(table.RowData{
			"n":        i + 1,
			"name":     step.Name,
			"action":   stepAction(step),
			"expect":   expect,
			"timeout":  fmt.Sprintf("%ds", step.TimeoutSeconds),
			"interact": interact,
		}))
	}

	return table.New(columns).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))).
		View()
}

func stepAction(step *switchhub.Step) string {
	switch {
	case step.IsBreak():
		return "break until prompt"
	case step.HasInterrupt():
		return fmt.Sprintf("interrupt %q", *step.Interrupt)
	case step.Command != nil:
		return "send " + *step.Command
	case step.ExpectPattern != nil:
		return "wait"
	case step.TimeoutSeconds > 0:
		return "listen"
	default:
		return "-"
	}
}

