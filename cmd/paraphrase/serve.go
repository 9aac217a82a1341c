package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/rs/cors"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/paraphrase/internal/api"
	"github.com/samcharles93/paraphrase/internal/logger"
	"github.com/samcharles93/paraphrase/internal/modelhost"
)

func serveCmd() *cli.Command {
	s := serveSettings{}

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the paraphrase REST API and web front end",
		Flags: append(hostFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "0.0.0.0:8000",
				Sources:     cli.EnvVars("PARAPHRASE_ADDR"),
				Destination: &s.addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &s.readTimeout,
			},
			&cli.IntFlag{
				Name:        "concurrency",
				Usage:       "generations allowed on the device at once",
				Value:       1,
				Destination: &s.concurrency,
			},
			&cli.IntFlag{
				Name:        "max-beams",
				Usage:       "largest num_beams a client may request",
				Value:       api.DefaultMaxBeams,
				Destination: &s.maxBeams,
			},
			&cli.StringSliceFlag{
				Name:        "cors-origin",
				Usage:       "allowed CORS origin (repeatable)",
				Destination: &s.corsOrigins,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyHostConfig(cmd, fileConfig)
			applyServeConfig(cmd, fileConfig, &s)
			log := logger.FromContext(ctx)

			host, err := modelhost.Load(ctx, hostConfig(log))
			if err != nil {
				return err
			}
			defer host.Close()

			bounded := modelhost.NewBounded(host, s.concurrency)
			server := api.NewServer(bounded, api.ServerConfig{
				MaxBeams: s.maxBeams,
				Logger:   log,
			})

			e := newEcho(s.corsOrigins)
			server.Register(e)

			log.Info("starting server",
				"address", s.addr,
				"model", host.Model(),
				"device", host.Device(),
				"concurrency", s.concurrency,
			)
			sc := echo.StartConfig{
				Address: s.addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = s.readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

func newEcho(corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	if len(corsOrigins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins: corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{echo.HeaderContentType, echo.HeaderXRequestID},
			ExposedHeaders: []string{echo.HeaderXRequestID},
		})
		e.Pre(echo.WrapMiddleware(c.Handler))
	}
	return e
}

func hostConfig(log logger.Logger) modelhost.Config {
	return modelhost.Config{
		RuntimeURL:     runtimeURL,
		Model:          modelName,
		Device:         deviceName,
		Prefix:         prefix,
		MaxLength:      maxLength,
		LoadAttempts:   loadAttempts,
		RequestTimeout: generateTimeout,
		Logger:         log,
	}
}
