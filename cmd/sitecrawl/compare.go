package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitecrawl/internal/report"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <previous> <current>",
		Short: "Compare the URL files of two crawls",
		Long: `Compare shows which URLs appeared and disappeared between two output files
of the same site. Each file may be .json or .txt; they do not need to match.

Examples:
  # Compare an older copy with the latest output
  sitecrawl compare old/example.com.txt example.com.txt

  # Markdown output for a pull request or wiki page
  sitecrawl compare --markdown old/example.com.json example.com.json

  # Machine-readable output
  sitecrawl compare --json old/example.com.json example.com.json`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	previous, err := report.ReadURLSetFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read previous file: %w", err)
	}
	current, err := report.ReadURLSetFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read current file: %w", err)
	}

	diff := report.CompareURLSets(previous, current)
	out := cmd.OutOrStdout()

	switch {
	case jsonOutput:
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).WriteDiff(diff)
	case markdownOutput:
		_, err = report.NewMarkdownWriter(out).WriteDiff(diff)
	default:
		_, err = report.NewSimpleWriter(out).WriteDiff(diff)
	}
	return err
}
