package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iliyamo/letters/internal/logging"
)

// cronLogger feeds robfig/cron's own messages into the job's logger.
type cronLogger struct{ logger *zerolog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// Schedule runs task on the cron spec (standard five fields or descriptors
// like "@every 5m") until the returned job is canceled. A run that is still
// going when the next one is due is skipped. Task errors are logged.
func Schedule(name, spec string, task func(ctx context.Context) error) (*Job, error) {
	job := New(name)
	logger := cronLogger{logger: &job.Logger}

	c := cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))
	_, err := c.AddFunc(spec, func() {
		if err := task(job.Ctx); err != nil {
			job.Logger.Error().Err(err).Msg("scheduled task failed")
		}
	})
	if err != nil {
		job.Cancel()
		job.Finish()
		return nil, fmt.Errorf("schedule %s: %w", name, err)
	}

	c.Start()
	go func() {
		defer job.Finish()
		defer logging.LogPanics(&job.Logger)
		<-job.Canceled()
		job.Logger.Debug().Msg("stopping scheduler")
		<-c.Stop().Done()
	}()
	return job, nil
}
