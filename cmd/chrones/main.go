// chrones — supervise an instrumented command, sample its resource
// usage on a fixed cadence, and turn its event stream into timing
// summaries.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacquev6/chrones/internal/config"
	"github.com/jacquev6/chrones/internal/gpuprobe"
	"github.com/jacquev6/chrones/internal/mcpserver"
	"github.com/jacquev6/chrones/internal/rundiff"
	"github.com/jacquev6/chrones/internal/runresult"
	"github.com/jacquev6/chrones/internal/scheduler"
	"github.com/jacquev6/chrones/internal/summary"
	"github.com/jacquev6/chrones/internal/warn"
)

var version = "0.1.0"

const runResultFileName = "run-result.json"

func main() {
	rootCmd := &cobra.Command{
		Use:     "chrones",
		Short:   "Supervise a command and report on its instrumented timings",
		Version: version,
	}

	rootCmd.AddCommand(newRunCmd(), newReportCmd(), newMCPCmd(), newDiffCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		configPath string
		gpu        bool
		interval   float64
		logsDir    string
	)

	cmd := &cobra.Command{
		Use:   "run [flags] -- <command> [args...]",
		Short: "Run a command under supervision and write run-result.json",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.LoadFile(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if cmd.Flags().Changed("gpu") {
				cfg.MonitorGPU = gpu
			}
			if cmd.Flags().Changed("interval") {
				cfg.MonitoringInterval = time.Duration(interval * float64(time.Second))
			}
			if cmd.Flags().Changed("logs-dir") {
				cfg.LogsDirectory = logsDir
			}

			if err := cfg.Validate(gpuprobe.Available); err != nil {
				return err
			}

			warner := warn.New()
			result, err := scheduler.Run(args, cfg, warner)
			if err != nil {
				return err
			}

			built := runresult.Build(result.Tracker, runresult.BuildOptions{
				ExitCode:     result.ExitCode,
				GlobalUsage:  result.GlobalUsage,
				GPUMonitored: cfg.MonitorGPU,
				System:       result.System,
			})
			if err := runresult.Save(filepath.Join(cfg.LogsDirectory, runResultFileName), built); err != nil {
				return err
			}

			os.Exit(result.ExitCode)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a chrones.yaml runner configuration file")
	cmd.Flags().BoolVar(&gpu, "gpu", false, "Monitor GPU usage (overrides config)")
	cmd.Flags().Float64Var(&interval, "interval", 0.2, "Monitoring interval in seconds (overrides config)")
	cmd.Flags().StringVar(&logsDir, "logs-dir", ".", "Directory to write run-result.json and read *.chrones.csv from (overrides config)")

	return cmd
}

func newReportCmd() *cobra.Command {
	var (
		logsDir  string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Analyze a finished run's event streams and print timing summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := runresult.Load(filepath.Join(logsDir, runResultFileName))
			if err != nil {
				return err
			}

			summaries, err := runresult.Analyze(logsDir, results.MainProcess)
			if err != nil {
				return err
			}

			if asJSON {
				return printSummariesJSON(summaries)
			}
			printSummariesTable(summaries)
			return nil
		},
	}

	cmd.Flags().StringVar(&logsDir, "logs-dir", ".", "Directory containing run-result.json and the *.chrones.csv event files")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON instead of a table")

	return cmd
}

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start a Model Context Protocol server over a finished run",
		Long: `Starts a JSON-RPC server implementing the Model Context Protocol (MCP),
exposing a finished chrones run's summary and timing data to MCP-speaking
agents. Communication happens over standard input/output (stdio).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := mcpserver.NewServer(version)
			return srv.Start(ctx)
		},
	}
}

func newDiffCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diff <baseline-logs-dir> <current-logs-dir>",
		Short: "Compare the function summaries of two chrones runs",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseline, err := loadSummaries(args[0])
			if err != nil {
				return fmt.Errorf("load baseline: %w", err)
			}
			current, err := loadSummaries(args[1])
			if err != nil {
				return fmt.Errorf("load current: %w", err)
			}

			report := rundiff.Compare(baseline, current)
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			fmt.Print(rundiff.Format(report))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON instead of a human-readable summary")
	return cmd
}

func loadSummaries(logsDir string) ([]summary.Summary, error) {
	results, err := runresult.Load(filepath.Join(logsDir, runResultFileName))
	if err != nil {
		return nil, err
	}
	return runresult.Analyze(logsDir, results.MainProcess)
}

func printSummariesJSON(summaries []summary.Summary) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}

func printSummariesTable(summaries []summary.Summary) {
	fmt.Printf("%-30s %-15s %12s %12s %12s\n", "FUNCTION", "LABEL", "EXECUTIONS", "TOTAL(ms)", "AVG(ms)")
	for _, s := range summaries {
		label := ""
		if s.Label != nil {
			label = *s.Label
		}
		avg := "-"
		if s.AverageDuration != nil {
			avg = fmt.Sprintf("%.2f", summary.MillisFromNanos(int64(*s.AverageDuration)))
		}
		fmt.Printf("%-30s %-15s %12d %12.2f %12s\n",
			s.FunctionName, label, s.ExecutionsCount, summary.MillisFromNanos(s.TotalDuration), avg)
	}
}
