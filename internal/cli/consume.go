package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/letters/internal/jobs"
	"github.com/iliyamo/letters/internal/logging"
	"github.com/iliyamo/letters/internal/queue"
)

func newConsumeCommand(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Log article events from the message queue until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			job := queue.RunConsumer(cfg.Events, queue.LogEvent)

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(signals)

			select {
			case <-signals:
			case <-job.Finished():
				return nil
			}
			if unfinished := (jobs.Jobs{job}).CancelAndWait(shutdownTimeout); len(unfinished) > 0 {
				logging.Warn().Strs("unfinished", unfinished).Msg("consumer did not stop by the deadline")
			}
			return nil
		},
	}
}
