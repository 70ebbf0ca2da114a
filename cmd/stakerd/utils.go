// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/yashvikram30/staking/log"
	"github.com/yashvikram30/staking/logdb"
	"github.com/yashvikram30/staking/lvldb"
	"github.com/yashvikram30/staking/staker"
)

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".stakerd")
	}
	return ""
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	var level slog.LevelVar
	level.Set(log.FromVerbosity(ctx.Int(verbosityFlag.Name)))

	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	log.Init(os.Stderr, &level, ctx.Bool(logJSONFlag.Name), useColor)
	return &level
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func fatal(args ...any) {
	fmt.Fprint(os.Stderr, "Fatal: ")
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

// openMainDB opens the record store. The instance dir "Memory" selects an in-memory store.
func openMainDB(instanceDir string) (*lvldb.LevelDB, error) {
	if instanceDir == "Memory" {
		db, err := lvldb.NewMem()
		return db, errors.Wrap(err, "open main database")
	}
	path := filepath.Join(instanceDir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open main database [%v]", path)
	}
	return db, nil
}

func openLogDB(instanceDir string) (*logdb.LogDB, error) {
	if instanceDir == "Memory" {
		db, err := logdb.NewMem()
		return db, errors.Wrap(err, "open log database")
	}
	path := filepath.Join(instanceDir, "activity.db")
	db, err := logdb.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open log database [%v]", path)
	}
	return db, nil
}

// startServer serves handler on addr until ctx is done.
func startServer(ctx context.Context, group *errgroup.Group, name, addr string, handler http.Handler) (string, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", errors.Wrapf(err, "listen %s addr [%v]", name, addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}

	group.Go(func() error {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			return errors.Wrapf(err, "%s server", name)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Info("stopping server...", "name", name)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return "http://" + listener.Addr().String() + "/", nil
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(s *staker.Staker, instanceDir, apiURL, metricsURL, adminURL string, level slog.Level) {
	policyState := "not initialized"
	if p, err := s.Policy(); err == nil {
		policyState = fmt.Sprintf("admin %v, max %d, duration %d", p.Admin(), p.MaxLockedPerUser(), p.LockDuration())
	}
	opts := s.Options()

	fmt.Printf(`Starting %v
    Policy       [ %v ]
    Accrual      [ %v, unit %v ]
    Instance dir [ %v ]
    Log level    [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		"stakerd/"+fullVersion(),
		policyState,
		opts.Accrual, opts.DurationUnit,
		instanceDir,
		log.LevelName(level),
		apiURL,
		metricsURL,
		adminURL)
}
