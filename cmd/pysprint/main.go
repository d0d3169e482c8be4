// Command pysprint orchestrates interferogram evaluations: it renders
// evaluation scripts from a YAML config and hands them to the Python
// runtime, either for a whole directory (audit) or on every change (watch).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ptrskay3/pysprint-cli/internal/config"
	"github.com/Ptrskay3/pysprint-cli/internal/console"
	"github.com/Ptrskay3/pysprint-cli/internal/logging"
	"github.com/Ptrskay3/pysprint-cli/internal/store"
)

var (
	// Global flags
	verbosity int

	// audit / watch flags
	configFile string
	resultFile string
	persist    bool
	override   bool

	// init flags
	initMethod string

	logger *zap.Logger
	con    = console.Stdout()
)

var rootCmd = &cobra.Command{
	Use:   "pysprint",
	Short: "Evaluation engine for spectral interferograms",
	Long: `pysprint renders evaluation scripts from eval.yaml and runs them with the
pysprint Python package. Results of every evaluated file are collected in a
single JSON result store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbosity)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit <path>",
	Short: "Evaluate every matching file in a directory",
	Long: `Discovers the data files under <path>, groups them according to
load_options.mod and evaluates them one by one. Files that fail are listed in
<path>/errors.log; they do not change the exit status.`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Watch a directory for changes, immediately rerun on events",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Print statistics of the dispersion coefficients in a result store",
	Args:  cobra.NoArgs,
	RunE:  runSummarize,
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default eval.yaml",
	Long: `Writes a default eval.yaml into [path] (default: current directory)
for the chosen method. Valid methods: fft, wft, spp, cff, mm.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v: script output, -vv: debug logging)")

	for _, c := range []*cobra.Command{auditCmd, watchCmd} {
		c.Flags().StringVarP(&configFile, "config", "c", config.DefaultFileName, "Config file, relative to <path>")
		c.Flags().StringVarP(&resultFile, "result", "r", store.DefaultFileName, "Result store, relative to <path>")
		c.Flags().BoolVar(&persist, "persist", false, "Keep the generated scripts next to the data")
		c.Flags().BoolVar(&override, "override", false, "Start with an empty result store")
	}
	summarizeCmd.Flags().StringVarP(&resultFile, "result", "r", store.DefaultFileName, "Result store to summarize")
	initCmd.Flags().StringVarP(&initMethod, "method", "m", "fft", "Evaluation method")
	initCmd.Flags().BoolVar(&override, "override", false, "Replace an existing eval.yaml")

	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
