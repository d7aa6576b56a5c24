// Package cli builds the motifscan command tree: scan (single
// process), coordinate (rank 0 of a distributed run) and worker.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"motifscan/internal/config"
	"motifscan/internal/version"
)

// ExitError carries a process exit code up to main: 1 input, 2 usage,
// 3 runtime.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

func inputErr(err error) error   { return &ExitError{Code: 1, Err: err} }
func runtimeErr(err error) error { return &ExitError{Code: 3, Err: err} }

// Options carries the flag values shared across subcommands.
type Options struct {
	SeqFile   string
	MotifFile string
	Output    string
	Threads   int
	Sort      bool
	Progress  bool
	Verbose   bool
	Stats     bool

	Listen  string
	Workers int
	Connect string
}

// NewRootCommand assembles the command tree. stdout/stderr are injected
// so tests can capture everything.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cfg := config.New()

	root := &cobra.Command{
		Use:           "motifscan",
		Short:         "Distributed IUPAC motif search over DNA sequence collections",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(
		newScanCommand(cfg),
		newCoordinateCommand(cfg),
		newWorkerCommand(cfg),
	)
	return root
}

func addScanFlags(cmd *cobra.Command, o *Options, cfg config.Config) {
	fs := cmd.Flags()
	fs.StringVarP(&o.SeqFile, "sequences", "s", "", "sequence file (FASTA-style, tab metadata) [*]")
	fs.StringVarP(&o.MotifFile, "motifs", "m", "", "motif table (pattern + three scores, TSV) [*]")
	fs.StringVarP(&o.Output, "output", "o", "", "write TSV to file instead of a console table")
	fs.IntVarP(&o.Threads, "threads", "t", cfg.Threads, "scan goroutines per process (0 = all CPUs)")
	fs.BoolVar(&o.Sort, "sort", cfg.Sort, "sort results by motif pattern")
	fs.BoolVar(&o.Progress, "progress", false, "show a progress bar while loading sequences")
	fs.BoolVarP(&o.Verbose, "verbose", "v", false, "verbose phase logging to stderr")
	fs.BoolVar(&o.Stats, "stats", false, "print communication and timing statistics")
	_ = cmd.MarkFlagRequired("sequences")
	_ = cmd.MarkFlagRequired("motifs")
}
