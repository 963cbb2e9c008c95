// Package main provides a simulated Solarmax inverter for testing go-solarmax without hardware.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/resident-x/go-solarmax/internal/simulator"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	listen   string
	behavior string
	interval time.Duration
	verbose  bool
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "test-inverter",
		Short: "Simulated Solarmax inverter",
		Long: `test-inverter answers Solarmax read requests on a TCP port with values of an
inverter feeding in at midday. Point go-solarmax at it to exercise the full
daemon without hardware.

Behaviors:
  normal   answer every request
  silent   accept requests but never answer
  hangup   close the connection after the request
  garbage  answer with an undecodable frame`,
		Example:       "  test-inverter --listen :12345 --interval 10s --verbose",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.listen, "listen", "l", ":12345", "Address to listen on")
	cmd.Flags().StringVarP(&opts.behavior, "behavior", "b", simulator.BehaviorNormal.String(), "Response behavior (normal, silent, hangup, garbage)")
	cmd.Flags().DurationVarP(&opts.interval, "interval", "i", 10*time.Second, "Interval between value changes, 0 keeps values fixed")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	level := zerolog.InfoLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	behavior, err := simulator.ParseBehavior(opts.behavior)
	if err != nil {
		return err
	}

	sim := simulator.New()
	sim.SetBehavior(behavior)
	if err := sim.Start(opts.listen); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.listen, err)
	}
	defer func() {
		_ = sim.Close()
	}()

	log.Info().
		Str("address", sim.Addr()).
		Str("behavior", behavior.String()).
		Dur("interval", opts.interval).
		Msg("Simulated inverter running")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ticks <-chan time.Time
	if opts.interval > 0 {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		ticks = ticker.C
	}

	base := sim.Values()
	for {
		select {
		case <-ctx.Done():
			log.Info().Int64("requests", sim.Requests()).Msg("Shutting down")
			return nil
		case <-ticks:
			vary(sim, base)
		}
	}
}

// varyingFields drift around their base value to make the readings look alive.
var varyingFields = []domain.FieldCode{
	domain.FieldPAC, domain.FieldPDC, domain.FieldPD01, domain.FieldPD02,
	domain.FieldIDC, domain.FieldID01, domain.FieldID02,
	domain.FieldIL1, domain.FieldTKK,
}

// vary moves each varying field up to 10% away from its base value and bumps the energy counter.
func vary(sim *simulator.Simulator, base map[domain.FieldCode]uint64) {
	for _, field := range varyingFields {
		raw := base[field]
		if raw == 0 {
			continue
		}
		spread := int64(raw) / 10
		if spread == 0 {
			continue
		}
		sim.SetValue(field, uint64(int64(raw)+rand.Int63n(2*spread+1)-spread)) //nolint:gosec // simulated readings
	}

	current := sim.Values()
	// Energy today grows with the current power, one tick at a time.
	sim.SetValue(domain.FieldKDY, current[domain.FieldKDY]+current[domain.FieldPAC]/2/360+1)

	log.Debug().
		Uint64("pac_raw", current[domain.FieldPAC]).
		Uint64("kdy", current[domain.FieldKDY]).
		Msg("Values updated")
}
