package main

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/paraphrase/internal/modelhost"
)

var (
	runtimeURL      string
	modelName       string
	deviceName      string
	prefix          string
	maxLength       int
	loadAttempts    int
	generateTimeout time.Duration
	logLevel        string
	logFormat       string
	debug           bool
)

func hostFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "runtime-url",
			Usage:       "base URL of the generation runtime",
			Value:       modelhost.DefaultRuntimeURL,
			Sources:     cli.EnvVars("PARAPHRASE_RUNTIME_URL"),
			Destination: &runtimeURL,
		},
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "pretrained model identifier the runtime must serve",
			Value:       modelhost.DefaultModel,
			Destination: &modelName,
		},
		&cli.StringFlag{
			Name:        "device",
			Usage:       "compute device (auto, cpu, cuda)",
			Value:       "auto",
			Sources:     cli.EnvVars("PARAPHRASE_DEVICE"),
			Destination: &deviceName,
		},
		&cli.StringFlag{
			Name:        "prefix",
			Usage:       "task prefix prepended to every input",
			Destination: &prefix,
		},
		&cli.IntFlag{
			Name:        "max-length",
			Usage:       "maximum token length of inputs and outputs",
			Value:       modelhost.DefaultMaxLength,
			Destination: &maxLength,
		},
		&cli.IntFlag{
			Name:        "load-attempts",
			Usage:       "how many times to try reaching the runtime at startup",
			Value:       modelhost.DefaultLoadAttempts,
			Destination: &loadAttempts,
		},
		&cli.DurationFlag{
			Name:        "generate-timeout",
			Usage:       "limit for a single generation call (0 disables)",
			Value:       2 * time.Minute,
			Destination: &generateTimeout,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}
