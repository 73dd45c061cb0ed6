package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	_, err = a.sched.AddFunc(a.appConfig.Jobs.TokenSweep, a.SchedSweepTokensTask)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc(a.appConfig.Jobs.Rollup, a.RunRollups)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}
}

// SchedSweepTokensTask drops expired password reset tokens.
func (a *Application) SchedSweepTokensTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	if n := a.svc.Tokens().Sweep(); n > 0 {
		zap.L().Info("swept expired reset tokens", zap.Int("count", n), zap.String("namespace", "job"))
	}
}

// RunRollups rebuilds the derived customers and revenue collections.
func (a *Application) RunRollups() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()
	ctx := context.Background()
	customers, err := a.svc.RollupCustomers(ctx)
	if err != nil {
		zap.S().Errorf("customer rollup error %s", err.Error())
	}
	days, err := a.svc.RollupRevenue(ctx)
	if err != nil {
		zap.S().Errorf("revenue rollup error %s", err.Error())
	}
	zap.L().Info("rollup finished",
		zap.Int("customers", customers),
		zap.Int("days", days),
		zap.String("namespace", "job"))
}
