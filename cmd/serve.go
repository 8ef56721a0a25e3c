package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/evaluation"
	"github.com/seeg/onehcm/internal/matching"
	"github.com/seeg/onehcm/internal/server"
	"github.com/seeg/onehcm/internal/synthesis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve syntheses, matching and evaluation over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default is server.addr)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := rt.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	matcher := matching.NewMatcher(rt.config.Matcher.TTL, rt.logger.Named("matcher"))
	if err := matcher.Refresh(ctx, db); err != nil {
		// The cache can still be loaded later through POST /job-offers/refresh.
		rt.logger.Warn("initial job offer load failed", zap.Error(err))
	}
	go refreshWhenStale(ctx, matcher, db, rt.config.Matcher.TTL, rt.logger)

	deps := server.Deps{
		Synthesis:    synthesis.NewAggregator(db, rt.logger),
		Applications: db,
		Matcher:      matcher,
		Offers:       db,
		Recorder:     rt.recorder,
		Logger:       rt.logger,
	}

	scorer, err := rt.newScoringClient()
	if err != nil {
		rt.logger.Warn("evaluation endpoint disabled", zap.Error(err))
	} else {
		deps.Evaluator = evaluation.New(matcher, scorer, rt.thresholds(), rt.logger)
	}

	return server.New(deps).ListenAndServe(ctx, rt.config.Server.Addr)
}

// refreshWhenStale reloads the job offer cache once its TTL has elapsed.
func refreshWhenStale(ctx context.Context, m *matching.Matcher, src matching.OfferSource, ttl time.Duration, l *zap.Logger) {
	if ttl <= 0 {
		ttl = matching.DefaultTTL
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.IsStale() {
				continue
			}
			if err := m.Refresh(ctx, src); err != nil && ctx.Err() == nil {
				l.Warn("job offer refresh failed", zap.Error(err))
			}
		}
	}
}
