package cmd

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

	"github.com/MariHpf/oauth-app-marius-test/internal/config"
	"github.com/MariHpf/oauth-app-marius-test/server"
	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errPanicRecovered = errors.New("panic recovered")

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		for {
			err := run()
			if errors.Is(err, errPanicRecovered) {
				log.Err(err).Msg("Error running server, restarting")
				time.Sleep(1 * time.Second)
				continue
			}
			if err != nil {
				return err
			}
			break
		}
		log.Info().Msg("Server stopped")
		return nil
	},
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errPanicRecovered
		}
	}()

	c := config.New()
	if err := config.Validate(c); err != nil {
		return err
	}
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := newStores(ctx, c)
	if err != nil {
		return err
	}
	defer st.close()
	logInstallations(ctx, st.installations)

	services, err := newServices(c, st)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           server.New(c, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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
