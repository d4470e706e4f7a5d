/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: learn.go
Description: Learn command implementation.
*/

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kleascm/akaylee-learner/pkg/reporting"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunLearn learns the target and writes the model
func RunLearn(cmd *cobra.Command, args []string) error {
	if err := bindLearnFlags(cmd); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	out, err := s.run(ctx)
	if err != nil {
		return fmt.Errorf("learning failed: %w", err)
	}
	if logger != nil {
		stats := s.collector.Snapshot()
		logger.LogQueryStats(stats.MembershipQueries, stats.QuerySymbols, stats.CacheHits)
		logger.LogLearningFinished(out.result.Rounds, out.result.States, out.result.Converged, out.result.Duration)
	}

	if path := viper.GetString("output"); path != "" {
		if err := writeModel(path, viper.GetString("format"), s, out); err != nil {
			return err
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSummary(out.result, s.collector.Snapshot()))
	return nil
}

func writeModel(path, format string, s *session, out outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if format == reporting.FormatHTML {
		gen := reporting.NewDashboardGenerator("", s.log)
		data := reporting.NewDashboardData(s.target.Name, Version, out.result, out.model)
		stats := s.collector.Snapshot()
		data.Stats = &stats
		err = gen.Render(f, data)
	} else {
		err = out.model.Write(f, format)
	}
	if err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	s.log.WithField("path", path).Info("Model written")
	return f.Close()
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
