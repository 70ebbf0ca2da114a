// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/yashvikram30/staking/api"
	"github.com/yashvikram30/staking/api/admin"
	"github.com/yashvikram30/staking/api/subscriptions"
	"github.com/yashvikram30/staking/log"
	"github.com/yashvikram30/staking/metrics"
	"github.com/yashvikram30/staking/records"
	"github.com/yashvikram30/staking/registry"
	"github.com/yashvikram30/staking/staker"
	"github.com/yashvikram30/staking/tokenprog"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "stakerd")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "stakerd"
	app.Usage = "Custody and rewards ledger for staked collection assets"
	app.Flags = []cli.Flag{
		dataDirFlag,
		persistFlag,
		configFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiReplayCacheFlag,
		apiActivityLimitFlag,
		enableAPILogsFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		verbosityFlag,
		logJSONFlag,
		durationUnitFlag,
		accrualFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
	}
	app.Action = action
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func action(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	logLevel := initLogger(ctx)

	accrual, err := staker.ParseAccrual(ctx.String(accrualFlag.Name))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	var instanceDir string
	if ctx.Bool(persistFlag.Name) {
		instanceDir = makeDataDir(ctx)
	} else {
		instanceDir = "Memory"
	}

	mainDB, err := openMainDB(instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()

	logDB, err := openLogDB(instanceDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	program := tokenprog.New(mainDB)
	reg := registry.New()
	feed := subscriptions.NewFeed()
	s, err := staker.New(records.New(mainDB), program, reg, staker.Options{
		DurationUnit: ctx.Duration(durationUnitFlag.Name),
		Accrual:      accrual,
		Sink:         staker.Sinks{logDB, feed},
	})
	if err != nil {
		return err
	}
	if err := cfg.apply(exitSignal, s, program, reg); err != nil {
		return errors.WithMessage(err, "apply config")
	}

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeSubs := api.New(s, program, logDB, feed, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		ReplayCacheSize:      ctx.Int(apiReplayCacheFlag.Name),
		ActivityLimit:        ctx.Uint64(apiActivityLimitFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
	})
	defer func() { logger.Info("closing subscriptions..."); closeSubs() }()

	group, groupCtx := errgroup.WithContext(exitSignal)

	apiURL, err := startServer(groupCtx, group, "API", ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}

	metricsURL := "Disabled"
	if ctx.Bool(enableMetricsFlag.Name) {
		if metricsURL, err = startServer(groupCtx, group, "metrics", ctx.String(metricsAddrFlag.Name), metrics.HTTPHandler()); err != nil {
			return err
		}
		metricsURL += "metrics"
	}

	adminURL := "Disabled"
	if ctx.Bool(enableAdminFlag.Name) {
		if adminURL, err = startServer(groupCtx, group, "admin", ctx.String(adminAddrFlag.Name), admin.New(logLevel, apiLogs)); err != nil {
			return err
		}
		adminURL += "admin"
	}

	printStartupMessage(s, instanceDir, apiURL, metricsURL, adminURL, logLevel.Level())

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
