package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/paraphrase/internal/logger"
	"github.com/samcharles93/paraphrase/internal/modelhost"
)

func generateCmd() *cli.Command {
	var (
		text        string
		numReturn   int
		numBeams    int
		temperature float64
	)

	return &cli.Command{
		Name:      "generate",
		Usage:     "Paraphrase one text and print one variant per line",
		ArgsUsage: "[text]",
		Flags: append(hostFlags(),
			&cli.StringFlag{
				Name:        "text",
				Usage:       "text to paraphrase (default: arguments, then stdin)",
				Destination: &text,
			},
			&cli.IntFlag{
				Name:        "num-return-sequences",
				Aliases:     []string{"n"},
				Usage:       "number of paraphrases",
				Value:       modelhost.DefaultNumReturnSequences,
				Destination: &numReturn,
			},
			&cli.IntFlag{
				Name:        "num-beams",
				Aliases:     []string{"b"},
				Usage:       "beam search width",
				Value:       modelhost.DefaultNumBeams,
				Destination: &numBeams,
			},
			&cli.FloatFlag{
				Name:        "temperature",
				Aliases:     []string{"t"},
				Usage:       "sampling temperature",
				Value:       modelhost.DefaultTemperature,
				Destination: &temperature,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyHostConfig(cmd, fileConfig)
			log := logger.FromContext(ctx)

			input, err := generateInput(text, cmd.Args().Slice(), os.Stdin)
			if err != nil {
				return err
			}
			opts := modelhost.Options{
				NumReturnSequences: numReturn,
				NumBeams:           numBeams,
				Temperature:        temperature,
			}
			if err := opts.Validate(); err != nil {
				return cli.Exit(err.Error(), 2)
			}

			host, err := modelhost.Load(ctx, hostConfig(log))
			if err != nil {
				return err
			}
			defer host.Close()

			paraphrases, err := host.Generate(ctx, input, opts)
			if err != nil {
				return err
			}
			return printLines(cmd.Root().Writer, paraphrases)
		},
	}
}

// generateInput picks the text from the flag, the positional arguments or
// stdin, in that order.
func generateInput(flagText string, args []string, stdin io.Reader) (string, error) {
	text := flagText
	if text == "" && len(args) > 0 {
		text = strings.Join(args, " ")
	}
	if text == "" && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\r\n")
	}
	if strings.TrimSpace(text) == "" {
		return "", cli.Exit("Text cannot be empty", 2)
	}
	return text, nil
}

func printLines(w io.Writer, lines []string) error {
	if w == nil {
		w = os.Stdout
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
