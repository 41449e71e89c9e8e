package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/IBM/sarama"
	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/airspace-overlay/internal/core/model"
	"github.com/mohammed-shakir/airspace-overlay/internal/logger"
)

// cli carries the streams and logger shared by subcommands.
type cli struct {
	in       io.Reader
	out      io.Writer
	logLevel string
	log      *slog.Logger
	producer func(brokers []string) (sarama.SyncProducer, error)
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	return (&cli{in: in, out: out, producer: newSyncProducer}).rootCmd()
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "airspacectl",
		Short:         "Offline airspace overlay tools",
		Long:          "airspacectl runs the coordinate, tile grid and zone rendering core without the HTTP service. Output is JSON on stdout.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			zl := logger.Build(logger.Config{Level: c.logLevel, Console: true, Component: "airspacectl"}, os.Stderr)
			c.log = logger.NewSlog(&zl)
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "Set log level (debug, info, warn, error)")

	root.AddCommand(
		c.convertCmd(),
		c.distanceCmd(),
		c.tilesCmd(),
		c.renderCmd(),
		c.statusCmd(),
		c.publishCmd(),
	)
	return root
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// parseLngLat reads "lng,lat".
func parseLngLat(s string) (model.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return model.GeoPoint{}, fmt.Errorf("expected lng,lat got %q", s)
	}
	v, err := parseFloats(parts)
	if err != nil {
		return model.GeoPoint{}, err
	}
	return model.GeoPoint{Longitude: v[0], Latitude: v[1]}, nil
}
