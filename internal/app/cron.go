package app

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger пишет внутренние события cron в zap
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}

// NewCron создаёт cron, у которого паника в задаче не роняет процесс
func NewCron(logger *zap.Logger) *cron.Cron {
	l := cronLogger{sugar: logger.Named("cron").Sugar()}
	return cron.New(
		cron.WithLogger(l),
		cron.WithChain(cron.Recover(l)),
	)
}
