/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: run.go
Description: The learning loop. Alternates hypothesis construction and
equivalence queries until no counterexample is found or the round limit is
reached, growing the alphabet on schedule. Every round is traced as a span.
*/

package experiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/kleascm/akaylee-learner/pkg/learner"
	"github.com/kleascm/akaylee-learner/pkg/monitoring"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("akaylee.experiment")

// ErrNoProgress is returned when a counterexample leaves the hypothesis
// unchanged, meaning the equivalence oracle and the membership oracle disagree
var ErrNoProgress = errors.New("counterexample did not refine the hypothesis")

// Round describes one completed hypothesis
type Round[I comparable, D any, M any] struct {
	Number         int
	Hypothesis     *learner.Hypothesis[I, D]
	Model          M
	Counterexample automata.Word[I]
	Stats          learner.Stats
}

// Options control a run
type Options[I comparable, D any, M any] struct {
	MaxRounds int
	// Grow maps a round number to symbols added before that round. Growth
	// scheduled after convergence is applied and learning resumes.
	Grow      map[int][]I
	Logger    *logrus.Logger
	Collector *monitoring.MetricsCollector
	// OnRound is called after each equivalence query
	OnRound func(Round[I, D, M])
}

// Result summarizes a run
type Result[I comparable, D any, M any] struct {
	Rounds          int                       `json:"rounds"`
	States          int                       `json:"states"`
	Converged       bool                      `json:"converged"`
	Duration        time.Duration             `json:"duration"`
	Counterexamples []automata.Word[I]        `json:"counterexamples"`
	Stats           learner.Stats             `json:"stats"`
	Hypothesis      *learner.Hypothesis[I, D] `json:"-"`
	Model           M                         `json:"-"`
}

// Run learns until convergence or the round limit
func Run[I comparable, D any, M any](
	ctx context.Context,
	l *learner.Learner[I, D],
	eq interfaces.EquivalenceOracle[I, M],
	adapt func(*learner.Hypothesis[I, D]) M,
	opts Options[I, D, M],
) (*Result[I, D, M], error) {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 100
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	ctx, span := tracer.Start(ctx, "experiment.Run",
		trace.WithAttributes(
			attribute.String("learner.domain", l.Domain().Kind().String()),
			attribute.Int("learner.max_rounds", opts.MaxRounds),
		),
	)
	defer span.End()

	start := time.Now()
	result := &Result[I, D, M]{}
	fail := func(err error) (*Result[I, D, M], error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		result.Duration = time.Since(start)
		result.Stats = l.Stats()
		return result, err
	}

	if err := l.StartLearning(ctx); err != nil {
		return fail(fmt.Errorf("failed to start learning: %w", err))
	}

	pending := make([]int, 0, len(opts.Grow))
	for r := range opts.Grow {
		pending = append(pending, r)
	}
	sort.Ints(pending)
	grow := func(ctx context.Context, round int) error {
		syms := opts.Grow[round]
		pending = pending[1:]
		for _, a := range syms {
			if err := l.AddAlphabetSymbol(ctx, a); err != nil {
				return fmt.Errorf("failed to add symbol %v: %w", a, err)
			}
		}
		logger.WithFields(logrus.Fields{
			"round":   round,
			"symbols": len(syms),
			"states":  l.Stats().States,
		}).Info("Alphabet extended")
		return nil
	}

	for round := 1; ; round++ {
		for len(pending) > 0 && pending[0] <= round {
			if err := grow(ctx, pending[0]); err != nil {
				return fail(err)
			}
		}

		ce, found, model, err := step(ctx, l, eq, adapt, round, result, opts, logger)
		if err != nil {
			return fail(err)
		}
		result.Rounds = round
		result.Model = model

		if !found {
			if len(pending) > 0 {
				if err := grow(ctx, pending[0]); err != nil {
					return fail(err)
				}
				continue
			}
			result.Converged = true
			break
		}
		result.Counterexamples = append(result.Counterexamples, ce)
		if round >= opts.MaxRounds {
			logger.WithField("rounds", round).Warn("Round limit reached before convergence")
			break
		}

		refined, err := l.RefineHypothesis(ctx, ce)
		if err != nil {
			return fail(fmt.Errorf("round %d: %w", round, err))
		}
		if !refined {
			return fail(fmt.Errorf("round %d: %w: %s", round, ErrNoProgress, ce))
		}
	}

	result.Duration = time.Since(start)
	result.Stats = l.Stats()
	result.States = result.Hypothesis.Size()
	span.SetAttributes(
		attribute.Int("learner.rounds", result.Rounds),
		attribute.Int("learner.states", result.States),
		attribute.Bool("learner.converged", result.Converged),
	)
	span.SetStatus(codes.Ok, "")
	logger.WithFields(logrus.Fields{
		"rounds":    result.Rounds,
		"states":    result.States,
		"converged": result.Converged,
		"duration":  result.Duration,
	}).Info("Learning finished")
	return result, nil
}

// step builds the hypothesis and asks for a counterexample
func step[I comparable, D any, M any](
	ctx context.Context,
	l *learner.Learner[I, D],
	eq interfaces.EquivalenceOracle[I, M],
	adapt func(*learner.Hypothesis[I, D]) M,
	round int,
	result *Result[I, D, M],
	opts Options[I, D, M],
	logger *logrus.Logger,
) (automata.Word[I], bool, M, error) {
	var zero M
	ctx, span := tracer.Start(ctx, "experiment.Round", trace.WithAttributes(attribute.Int("round", round)))
	defer span.End()

	hyp, err := l.HypothesisModel(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, false, zero, fmt.Errorf("failed to build hypothesis: %w", err)
	}
	result.Hypothesis = hyp
	model := adapt(hyp)
	if opts.Collector != nil {
		opts.Collector.RecordRound(hyp.Size())
	}
	span.SetAttributes(attribute.Int("hypothesis.states", hyp.Size()))

	ce, found, err := eq.FindCounterexample(ctx, model, l.Symbols())
	if err != nil {
		span.RecordError(err)
		return nil, false, zero, fmt.Errorf("equivalence query failed: %w", err)
	}

	stats := l.Stats()
	entry := logger.WithFields(logrus.Fields{
		"round":   round,
		"states":  hyp.Size(),
		"queries": stats.Queries,
	})
	if found {
		span.SetAttributes(attribute.Int("counterexample.length", ce.Len()))
		entry.WithField("counterexample", ce.String()).Info("Counterexample found")
	} else {
		entry.Info("No counterexample")
	}
	if opts.OnRound != nil {
		opts.OnRound(Round[I, D, M]{
			Number:         round,
			Hypothesis:     hyp,
			Model:          model,
			Counterexample: ce,
			Stats:          stats,
		})
	}
	return ce, found, model, nil
}
