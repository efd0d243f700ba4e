package vision

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewCommand creates a Cobra command tree for image collection management.
// The returned command can be executed directly or added to a parent CLI.
//
// Commands provided:
//   - validate <dir>
//   - info <dir> [--plot file]
//   - partition <dir> <val-count> [--output dir] [--force]
//   - runs [show <id> | forget <id> | forget --all]
//
// Global flags: --json, --quiet, --verbose
func NewCommand(cfg Config, opts ...WorkspaceOption) *cobra.Command {
	var (
		jsonOutput bool
		quiet      bool
		verbose    bool
	)

	// Workspace will be created in PersistentPreRunE
	var ws Workspace

	cmd := &cobra.Command{
		Use:   "imageset",
		Short: "Validate and partition image classification datasets",
		Long: "Validate directory-per-class image collections and split them into " +
			"Train/ and Validation/ trees for transfer learning.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip workspace creation for help commands
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			wsOpts := append([]WorkspaceOption{}, opts...)
			if verbose {
				logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
				wsOpts = append(wsOpts, WithLogger(logger))
			}

			var err error
			ws, err = NewWorkspace(cfg, wsOpts...)
			if err != nil {
				return fmt.Errorf("failed to initialize workspace: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	cmd.AddCommand(validateCmd(&ws, &jsonOutput, &quiet))
	cmd.AddCommand(infoCmd(&ws, &jsonOutput))
	cmd.AddCommand(partitionCmd(&ws, &jsonOutput, &quiet))
	cmd.AddCommand(runsCmd(&ws, &jsonOutput, &quiet))

	return cmd
}

func validateCmd(ws *Workspace, jsonOutput, quiet *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dir>",
		Short: "Check that a directory is a valid image collection",
		Long: "Check that every entry of <dir> is a class directory holding only " +
			"decodable images, and that there are at least two classes.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := (*ws).Inspect(cmd.Context(), args[0])

			if *jsonOutput {
				out := struct {
					Path   string `json:"path"`
					Valid  bool   `json:"valid"`
					Reason string `json:"reason,omitempty"`
				}{Path: args[0], Valid: err == nil}
				if err != nil {
					out.Reason = err.Error()
				}
				if encErr := writeJSON(cmd.OutOrStdout(), out); encErr != nil {
					return encErr
				}
				return err
			}

			if err != nil {
				return err
			}
			if !*quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: valid (%d classes, %d images)\n",
					args[0], info.ClassCount, info.ImageCount)
			}
			return nil
		},
	}
}

func infoCmd(ws *Workspace, jsonOutput *bool) *cobra.Command {
	var plotPath string

	cmd := &cobra.Command{
		Use:   "info <dir>",
		Short: "Show collection summary",
		Long:  "Show class and image counts and class balance for a valid collection.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := (*ws).Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if plotPath != "" {
				if err := PlotDistribution(info, plotPath); err != nil {
					return err
				}
			}

			return outputInfo(cmd.OutOrStdout(), info, *jsonOutput)
		},
	}

	cmd.Flags().StringVar(&plotPath, "plot", "", "Write a class distribution chart to this file (.png, .svg)")
	return cmd
}

func partitionCmd(ws *Workspace, jsonOutput, quiet *bool) *cobra.Command {
	var (
		outputDir string
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "partition <dir> <val-count>",
		Short: "Split a collection into Train and Validation trees",
		Long: "Copy the first <val-count> images of every class (in name order) into " +
			"Validation/<class>/ and the rest into Train/<class>/. The source is not modified.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			valCount, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: val-count must be an integer: %q", ErrInvalidArgument, args[1])
			}

			opts := []PartitionOption{WithOutputDir(outputDir)}
			if force {
				opts = append(opts, WithOverwrite())
			}

			var rendered bool
			if !*quiet && !*jsonOutput {
				startTime := time.Now()
				opts = append(opts, WithPartitionProgress(func(p PartitionProgress) {
					rendered = true
					renderProgress(cmd.OutOrStdout(), p.FilesCopied, p.FilesTotal, startTime)
				}))
			}

			result, err := (*ws).Partition(ctx, args[0], valCount, opts...)
			if rendered {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if err != nil {
				if errors.Is(err, ErrOutputExists) && !*quiet {
					fmt.Fprintln(cmd.ErrOrStderr(), "Output already exists (use --force to replace it)")
				}
				// A ledger failure still leaves a usable partition on disk
				if result.RunID == "" {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
			}

			if *jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			if !*quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Partitioned %d classes: %d train, %d validation\n",
					len(result.Classes), result.TrainImages(), result.ValidationImages())
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n  %s\n", result.TrainDir, result.ValidationDir)
				fmt.Fprintf(cmd.OutOrStdout(), "Run ID: %s\n", result.RunID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory that receives Train/ and Validation/")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace existing Train/ and Validation/ trees")
	return cmd
}

func runsCmd(ws *Workspace, jsonOutput, quiet *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded partition runs",
		Long:  "List partition runs recorded in the workspace ledger, newest first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := (*ws).Runs(cmd.Context())
			if err != nil {
				return err
			}
			return outputRuns(cmd.OutOrStdout(), runs, *jsonOutput)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a recorded partition run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := (*ws).Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return outputRunDetail(cmd.OutOrStdout(), run, *jsonOutput)
		},
	})

	cmd.AddCommand(forgetCmd(ws, quiet))
	return cmd
}

func forgetCmd(ws *Workspace, quiet *bool) *cobra.Command {
	var (
		all bool
		yes bool
	)

	cmd := &cobra.Command{
		Use:   "forget [id]",
		Short: "Remove runs from the ledger",
		Long:  "Remove a run, or every run with --all, from the ledger. Partition output on disk is kept.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if all {
				if !yes {
					fmt.Fprint(cmd.OutOrStdout(), "Forget all recorded runs? [y/N]: ")
					if !confirmPrompt(cmd.InOrStdin()) {
						fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
						return nil
					}
				}
				if err := (*ws).ClearRuns(ctx); err != nil {
					return err
				}
				if !*quiet {
					fmt.Fprintln(cmd.OutOrStdout(), "Ledger cleared.")
				}
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("%w: run id required (or use --all)", ErrInvalidArgument)
			}

			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Forget run %s? [y/N]: ", args[0])
				if !confirmPrompt(cmd.InOrStdin()) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}
			if err := (*ws).ForgetRun(ctx, args[0]); err != nil {
				return err
			}
			if !*quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot run %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Forget every recorded run")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

// confirmPrompt reads from stdin and returns true only if the user types 'y' or 'yes'.
// Returns false for empty input or any other response (default is no).
func confirmPrompt(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if scanner.Scan() {
		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		return response == "y" || response == "yes"
	}
	return false
}

// Output helpers

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputInfo(w io.Writer, info Info, asJSON bool) error {
	balance := info.Balance()

	if asJSON {
		return writeJSON(w, struct {
			Info
			Balance Balance `json:"balance"`
		}{info, balance})
	}

	fmt.Fprintf(w, "Collection:   %s\n", info.Root)
	fmt.Fprintf(w, "Classes:      %d\n", info.ClassCount)
	fmt.Fprintf(w, "Images:       %d\n", info.ImageCount)
	fmt.Fprintf(w, "Per class:    min %d, max %d, mean %.1f, stddev %.1f\n",
		balance.Min, balance.Max, balance.Mean, balance.StdDev)
	if balance.ImbalanceRatio > 0 {
		fmt.Fprintf(w, "Imbalance:    %.2fx\n", balance.ImbalanceRatio)
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CLASS\tIMAGES")
	for _, c := range info.Classes {
		fmt.Fprintf(tw, "%s\t%d\n", c.Name, c.Images)
	}
	return tw.Flush()
}

func outputRuns(w io.Writer, runs []PartitionRun, asJSON bool) error {
	if asJSON {
		if runs == nil {
			runs = []PartitionRun{}
		}
		return writeJSON(w, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No partition runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tCLASSES\tTRAIN\tVALIDATION\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			shortID(r.ID),
			r.Source,
			r.Classes,
			r.TrainImages,
			r.ValidationImages,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	return tw.Flush()
}

func outputRunDetail(w io.Writer, r PartitionRun, asJSON bool) error {
	if asJSON {
		return writeJSON(w, r)
	}

	fmt.Fprintf(w, "Run:          %s\n", r.ID)
	fmt.Fprintf(w, "Source:       %s\n", r.Source)
	fmt.Fprintf(w, "Output:       %s\n", r.OutputDir)
	fmt.Fprintf(w, "Val count:    %d\n", r.ValCount)
	fmt.Fprintf(w, "Classes:      %d\n", r.Classes)
	fmt.Fprintf(w, "Train:        %d\n", r.TrainImages)
	fmt.Fprintf(w, "Validation:   %d\n", r.ValidationImages)
	fmt.Fprintf(w, "Created:      %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// renderProgress renders the copy progress bar to the writer.
// Format: Copying [============>                 ] 45% (120/300 files, elapsed: 3s)
func renderProgress(w io.Writer, current, total int, startTime time.Time) {
	var pct float64
	if total > 0 {
		pct = float64(current) / float64(total) * 100
	}

	const barWidth = 30
	filled := int(pct / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	var bar string
	if filled >= barWidth {
		bar = strings.Repeat("=", barWidth)
	} else if filled > 0 {
		bar = strings.Repeat("=", filled) + ">" + strings.Repeat(" ", barWidth-filled-1)
	} else {
		bar = ">" + strings.Repeat(" ", barWidth-1)
	}

	fmt.Fprintf(w, "\r\x1b[KCopying [%s] %.0f%% (%d/%d files, elapsed: %s)",
		bar, pct, current, total, formatDuration(time.Since(startTime)))
}

// formatDuration formats a duration as human-readable text (e.g., "5s", "2m 30s", "1h 5m").
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	d = d.Round(time.Second)

	hours := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60

	if hours > 0 {
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hours, mins)
		}
		return fmt.Sprintf("%dh", hours)
	}
	if mins > 0 {
		if secs > 0 {
			return fmt.Sprintf("%dm %ds", mins, secs)
		}
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}
