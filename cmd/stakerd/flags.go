// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"time"

	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the record store and the activity log",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "keep state in data-dir instead of memory",
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML seed file with collections, assets and an optional policy",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8670",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiReplayCacheFlag = cli.IntFlag{
		Name:  "api-replay-cache",
		Value: 65536,
		Usage: "maximum number of unexpired signed requests remembered for replay protection",
	}
	apiActivityLimitFlag = cli.Uint64Flag{
		Name:  "api-activity-limit",
		Value: 1000,
		Usage: "limit the number of entries returned by /staking/activity",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Usage: "all queries with execution time(ms) above threshold will be logged",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all requests answered with a 5xx status",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	logJSONFlag = cli.BoolFlag{
		Name:  "log-json",
		Usage: "write logs as JSON",
	}
	durationUnitFlag = cli.DurationFlag{
		Name:  "duration-unit",
		Value: 24 * time.Hour,
		Usage: "length of one lock duration unit, a whole number of seconds",
	}
	accrualFlag = cli.StringFlag{
		Name:  "accrual",
		Value: "external",
		Usage: "how points accrue (external|on-release)",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
)
