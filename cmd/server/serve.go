package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-admin-console/internal/config"
	"github.com/jrsteele09/go-admin-console/phase"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const devEnv = "DEV"

func serveCmd() *cobra.Command {
	var seedCatalog bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the console server",
		Long: `Run the console server.

Without POSTGRES_DSN the users and the menu catalog live in memory and are
seeded on start. With it, --seed-catalog writes the default system menus
into the database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			for {
				err := run(seedCatalog)
				if err == nil {
					break
				}
				if !errors.Is(err, errPanicRecovered) {
					return err
				}
				log.Error().Err(err).Msg("restarting server")
				time.Sleep(1 * time.Second)
			}
			log.Info().Msg("Server stopped")
			return nil
		},
	}

	cmd.Flags().BoolVar(&seedCatalog, "seed-catalog", false, "Write the default system menus into the database catalog")

	return cmd
}

var errPanicRecovered = errors.New("panic recovered")

func run(seedCatalog bool) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errPanicRecovered
		}
	}()

	c := config.New()
	configureLogging(c.GetEnv())
	displayAppname(c.GetAppName())
	if c.IsDefaultTokenSecret() && c.GetPhase() != phase.Local {
		log.Warn().Str("phase", c.GetPhase().String()).Msg("signing session tokens with the default secret; set ADMIN_TOKEN_SECRET")
	}

	ctx := context.Background()
	a, err := buildApp(ctx, c, seedCatalog)
	if err != nil {
		return err
	}
	defer a.Close()

	server := &http.Server{Addr: c.GetPort(), Handler: a.handler, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(server) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func configureLogging(env string) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if env == devEnv {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
