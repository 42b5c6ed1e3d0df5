/*
Sheetlexd starts a sheetlex server and begins listening for new connections.

Usage:

	sheetlexd [flags]
	sheetlexd [flags] -l [[ADDRESS]:PORT]

Once started, the sheetlex server will listen for HTTP requests and respond to
them using REST protocol. By default, it will listen on localhost:8080. This can
be changed with the --listen/-l flag, the config file, or environment var. The
flag argument must be either a full address with port, such as
"192.168.0.2:6001", or just the port preceeded by a colon, such as ":6001".

Settings are read first from the [server] table of the config file, then from
environment variables, and last from flags, with each overriding the one
before.

The flags are:

	-v, --version
		Give the current version of the sheetlex server and then exit.

	-c, --config FILE
		Read settings from the [server] table of the given TOML file. If not
		given, will default to the value of environment variable
		SHEETLEX_CONFIG.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Must be in BIND_ADDRESS:PORT or :PORT
		format. If not given, will default to the value of environment variable
		SHEETLEX_LISTEN_ADDRESS, and if that is not given, will default to
		localhost:8080.

	--db DRIVER[:PARAMS]
		Use the given DB connection string. DRIVER must be one of the following:
		inmem, sqlite. inmem has no further params. sqlite needs the path to the
		data directory such as sqlite:path/to/db_dir. If not given, will default
		to the value of environment variable SHEETLEX_DATABASE. If no DB driver
		is specified, an in-memory database is automatically selected.

	--verbose
		Log debug messages.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dekarrin/sheetlex/internal/version"
	"github.com/dekarrin/sheetlex/server"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const (
	EnvListen = "SHEETLEX_LISTEN_ADDRESS"
	EnvDB     = "SHEETLEX_DATABASE"
	EnvConfig = "SHEETLEX_CONFIG"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of sheetlex server and then exit.")
	flagConfig  = pflag.StringP("config", "c", "", "Read settings from the given TOML config file.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagDB      = pflag.String("db", "", "Use the given DB connection string.")
	flagVerbose = pflag.Bool("verbose", false, "Log debug messages.")
)

func main() {
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s (sheetlex v%s, grammar revision %s)\n", version.ServerCurrent, version.Current, version.Grammar)
		return
	}

	if len(pflag.Args()) > 0 {
		fmt.Fprintf(os.Stderr, "Too many arguments\nDo -h for help.\n")
		os.Exit(1)
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger().
		Level(zerolog.InfoLevel)
	if *flagVerbose {
		log = log.Level(zerolog.DebugLevel)
	}

	// assemble a server config, starting from the config file
	var cfg server.Config

	configFile := os.Getenv(EnvConfig)
	if pflag.Lookup("config").Changed {
		configFile = *flagConfig
	}
	if configFile != "" {
		var err error
		cfg, err = server.LoadConfig(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err.Error())
			os.Exit(1)
		}
		log.Debug().Str("file", configFile).Msg("Loaded config")
	}

	// get address info
	listenAddr := os.Getenv(EnvListen)
	if pflag.Lookup("listen").Changed {
		listenAddr = *flagListen
	}
	if listenAddr != "" {
		if !strings.Contains(listenAddr, ":") {
			fmt.Fprintf(os.Stderr, "Listen address is not in ADDRESS:PORT or :PORT format.\nDo -h for help.\n")
			os.Exit(1)
		}
		cfg.ListenAddress = listenAddr
	}

	// look at db connection string
	dbConnStr := os.Getenv(EnvDB)
	if pflag.Lookup("db").Changed {
		dbConnStr = *flagDB
	}
	if dbConnStr != "" {
		db, err := server.ParseDBConnString(dbConnStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
			os.Exit(1)
		}
		cfg.DB = db
	}

	// configuration complete, initialize the server
	srv, err := server.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not start server")
	}
	log.Debug().Msg("Server initialized")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info().Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Could not shut down cleanly")
		}
	}()

	// okay, now actually launch it
	log.Info().Msgf("Starting sheetlex server %s...", version.ServerCurrent)
	err = srv.ServeForever()
	if closeErr := srv.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("Could not close DB")
	}
	if err != nil {
		log.Error().Err(err).Msg("Server stopped")
		os.Exit(2)
	}
}
