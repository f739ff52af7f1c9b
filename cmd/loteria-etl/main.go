package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"loteria/internal/core/version"
	"loteria/internal/modkit"
	"loteria/internal/platform/config"
	perr "loteria/internal/platform/errors"
	"loteria/internal/platform/logger"
	"loteria/internal/platform/store"

	"loteria/internal/services/etl/domain"
	etlmod "loteria/internal/services/etl/module"
	"loteria/internal/services/etl/report"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("loteria-etl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		fInput   = fs.String("input", "", "draws JSON: array, NDJSON or envelope object; - reads stdin")
		fOutput  = fs.String("output", "", "postgres DSN to commit into (default SERVICE_PGSQL_DBURL)")
		fPreview = fs.Bool("preview", false, "compute and report without touching any store")
		fLottery = fs.String("lottery", "", "lottery name for records that carry none")
		fSamples = fs.Int("samples", -1, "sample rows per relation in the report (default CORE_ETL_SAMPLES)")
		fJSON    = fs.Bool("json", false, "print the run summary as JSON")
		fVersion = fs.Bool("version", false, "print the build stamp and exit")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return perr.ExitOK
		}
		return perr.ExitUsage
	}
	if *fVersion {
		fmt.Fprintln(stdout, version.Info())
		return perr.ExitOK
	}
	if *fInput == "" || fs.NArg() > 0 {
		fmt.Fprintln(stderr, "usage: loteria-etl -input <path> [-output <dsn>] [-preview] [-lottery <name>] [-samples N] [-json]")
		return perr.ExitUsage
	}

	// Surface flags to the env-backed config the modules read
	mustSetEnv("SERVICE_PGSQL_DBURL", *fOutput)
	mustSetEnv("CORE_ETL_DEFAULT_LOTTERY", *fLottery)
	if *fSamples >= 0 {
		mustSetEnv("CORE_ETL_SAMPLES", strconv.Itoa(*fSamples))
	}

	l := logger.Get()
	l.Debug().Stringer("build", version.Info()).Bool("preview", *fPreview).Msg("loteria-etl starting")
	root := config.New()
	cfg := store.ConfigFromEnv(root, "loteria-etl")

	mode := domain.ModeCommit
	switch {
	case *fPreview:
		mode = domain.ModePreview
	case !cfg.PG.Enabled:
		l.Warn().Msg("no -output and no SERVICE_PGSQL_DBURL: running in preview mode")
		mode = domain.ModePreview
	}
	if mode == domain.ModePreview {
		cfg.PG.Enabled = false
	}
	if mode == domain.ModePreview || !etlmod.FromConfig(root).Mirror {
		cfg.CH.Enabled = false
	}

	st, err := store.Open(ctx, cfg, store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return perr.ExitCode(err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		Log: *l,
	}
	m, err := etlmod.New(deps)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return perr.ExitCode(err)
	}
	modkit.Register(m)
	runner := modkit.MustPortOf[domain.RunnerPort](m)

	out, runErr := runner.Run(ctx, domain.Request{Input: *fInput, Mode: mode})

	var werr error
	if *fJSON {
		werr = report.JSON(stdout, out.Summary)
	} else {
		werr = report.Text(stdout, out, m.Options().Samples)
	}
	if werr != nil {
		l.Error().Err(werr).Msg("failed to write report")
	}

	if runErr != nil {
		return perr.ExitCode(runErr)
	}
	if werr != nil {
		return perr.ExitInput
	}
	return perr.ExitOK
}
