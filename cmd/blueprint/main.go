// Package main provides the blueprint command line tool.
package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/dukex/blueprint/pkg/cmd"
	"github.com/dukex/blueprint/pkg/log"
	"github.com/dukex/blueprint/pkg/otelhelper"
	"github.com/dukex/blueprint/pkg/services"
	cli "github.com/urfave/cli/v3"
)

// ErrInvalidBlueprint is returned when a checked document still has errors.
var ErrInvalidBlueprint = errors.New("blueprint has validation errors")

type app struct {
	in        io.Reader
	out       io.Writer
	logger    *slog.Logger
	blueprint *services.Blueprint
}

func newApp(in io.Reader, out io.Writer) *cli.Command {
	a := &app{in: in, out: out}

	return &cli.Command{
		Name:                  "blueprint",
		Usage:                 "Validate, repair, convert and sanitize workflow blueprints",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			a.validateCommand(),
			a.fixCommand(),
			a.importCommand(),
			a.convertCommand(),
			a.sanitizeCommand(),
			a.modulesCommand(),
		},
	}
}

func (a *app) setup(ctx context.Context, command *cli.Command) (context.Context, error) {
	log.Setup(command.String("log-level"), command.String("log-format"))

	a.logger = log.WithModule("cli")
	a.blueprint = cmd.NewBlueprint(ctx, a.logger, otelhelper.NoopTracer())

	return log.WithLogger(ctx, a.logger), nil
}

func main() {
	err := newApp(os.Stdin, os.Stdout).Run(context.Background(), os.Args)
	if err != nil {
		slog.Error("blueprint failed", "error", err)
		os.Exit(1)
	}
}
