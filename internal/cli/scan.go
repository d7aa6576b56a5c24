package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"motifscan/internal/cluster"
	"motifscan/internal/config"
	"motifscan/internal/logger"
	"motifscan/internal/motif"
	"motifscan/internal/orchestrator"
	"motifscan/internal/output"
)

func newScanCommand(cfg config.Config) *cobra.Command {
	o := &Options{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a sequence file against a motif table in one process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCoordinatorSide(o, nil, cmd.OutOrStdout())
		},
	}
	addScanFlags(cmd, o, cfg)
	return cmd
}

// runCoordinatorSide is shared by scan (nil transport, size-1 run) and
// coordinate (connected TCP transport): load inputs, run the pipeline,
// render the combined results.
func runCoordinatorSide(o *Options, tr cluster.Transport, stdout io.Writer) error {
	logger.SetVerbose(o.Verbose)

	seqs, parseStats, err := motif.LoadSequences(o.SeqFile, o.Progress)
	if err != nil {
		return inputErr(err)
	}
	motifs, err := motif.LoadMotifs(o.MotifFile)
	if err != nil {
		return inputErr(err)
	}
	logger.Info("loaded %d sequences and %d motifs", len(seqs), len(motifs))

	proc := orchestrator.New()
	if err := proc.Initialize(orchestrator.Options{Threads: o.Threads, Transport: tr}); err != nil {
		return runtimeErr(err)
	}
	defer func() { _ = proc.Finalize() }()

	results, err := proc.Process(seqs, motifs)
	if err != nil {
		return runtimeErr(err)
	}
	if o.Sort {
		output.SortResults(results)
	}

	if o.Output != "" {
		fh, err := os.Create(o.Output)
		if err != nil {
			return runtimeErr(err)
		}
		if err := output.WriteTSV(fh, results); err != nil {
			_ = fh.Close()
			return runtimeErr(err)
		}
		if err := fh.Close(); err != nil {
			return runtimeErr(err)
		}
		logger.Info("results saved to %s", o.Output)
	} else {
		if err := output.WriteTable(stdout, results); err != nil {
			return runtimeErr(err)
		}
	}

	if o.Stats {
		printStats(stdout, proc, parseStats)
	}
	return nil
}

func printStats(w io.Writer, proc *orchestrator.Processor, parse motif.ParseStats) {
	fmt.Fprintln(w, "=== STATISTICS ===")
	for k, v := range parse {
		fmt.Fprintf(w, "parse %s: %d\n", k, v)
	}
	for op, s := range proc.CommunicationStats() {
		fmt.Fprintf(w, "comm %s: %d bytes in %s\n", op, s.Bytes, s.Time)
	}
	for op, d := range proc.PerfStats() {
		fmt.Fprintf(w, "perf %s: %s\n", op, d)
	}
}
