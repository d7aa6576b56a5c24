package cli

import (
	"github.com/spf13/cobra"

	"motifscan/internal/cluster"
	"motifscan/internal/config"
	"motifscan/internal/logger"
	"motifscan/internal/orchestrator"
)

func newCoordinateCommand(cfg config.Config) *cobra.Command {
	o := &Options{}
	cmd := &cobra.Command{
		Use:   "coordinate",
		Short: "Run as rank 0: wait for workers, distribute the corpus, combine results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger.SetVerbose(o.Verbose)
			tr, err := cluster.ListenAndAccept(o.Listen, o.Workers)
			if err != nil {
				return runtimeErr(err)
			}
			return runCoordinatorSide(o, tr, cmd.OutOrStdout())
		},
	}
	addScanFlags(cmd, o, cfg)
	cmd.Flags().StringVar(&o.Listen, "listen", cfg.Listen, "address to accept workers on")
	cmd.Flags().IntVar(&o.Workers, "workers", 0, "number of workers to wait for [*]")
	_ = cmd.MarkFlagRequired("workers")
	return cmd
}

func newWorkerCommand(cfg config.Config) *cobra.Command {
	o := &Options{}
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Join a run: receive a sequence slice, scan it, report back",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			logger.SetVerbose(o.Verbose)
			tr, err := cluster.Dial(o.Connect)
			if err != nil {
				return runtimeErr(err)
			}

			proc := orchestrator.New()
			if err := proc.Initialize(orchestrator.Options{Threads: o.Threads, Transport: tr}); err != nil {
				return runtimeErr(err)
			}
			defer func() { _ = proc.Finalize() }()

			// Inputs arrive over the wire; the combined results stay
			// with the coordinator.
			if _, err := proc.Process(nil, nil); err != nil {
				return runtimeErr(err)
			}
			logger.Info("worker rank %d done", proc.Rank())
			return nil
		},
	}
	cmd.Flags().StringVar(&o.Connect, "connect", "", "coordinator address to join [*]")
	cmd.Flags().IntVarP(&o.Threads, "threads", "t", cfg.Threads, "scan goroutines (0 = all CPUs)")
	cmd.Flags().BoolVarP(&o.Verbose, "verbose", "v", false, "verbose phase logging to stderr")
	_ = cmd.MarkFlagRequired("connect")
	return cmd
}
