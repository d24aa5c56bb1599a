// Command flux-lsp is a Language Server Protocol server for the Flux data
// query language, speaking JSON-RPC over stdio.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/digitallyserviced/flux-lsp/lsp"
)

var version = "2.0"

func main() {
	cmd := &cli.Command{
		Name:    "flux-lsp",
		Version: version,
		Usage:   "Flux language server over stdio",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "disable-folding",
				Usage: "do not advertise folding range support",
			},
			&cli.StringFlag{
				Name:  "influxdb-url",
				Usage: "InfluxDB host for bucket completion callbacks",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "authentication token for the InfluxDB host",
			},
			&cli.StringFlag{
				Name:  "org",
				Usage: "InfluxDB organization",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log at debug level",
			},
		},
		Action: serve,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	// Log to stderr; stdout carries the protocol.
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cmd.Bool("verbose") {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting flux-lsp server")

	options := lsp.Options{
		DisableFolding: cmd.Bool("disable-folding"),
		InfluxDBURL:    cmd.String("influxdb-url"),
		Token:          cmd.String("token"),
		Org:            cmd.String("org"),
	}

	return run(ctx, logger, options, os.Stdin, os.Stdout)
}

func run(ctx context.Context, logger *zap.Logger, options lsp.Options, in io.Reader, out io.Writer) error {
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	client := protocol.ClientDispatcher(conn, logger)
	server := lsp.NewServer(client, logger, nil, options)

	conn.Go(ctx, protocol.ServerHandler(server, nil))

	<-conn.Done()

	return conn.Err()
}

// readWriteCloser wraps separate reader/writer into io.ReadWriteCloser.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
