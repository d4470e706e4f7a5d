/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: session.go
Description: Wiring for a learning session: target drivers, query cache,
metrics, status server and the oracle chain in front of the learner.
*/

package commands

import (
	"context"
	"fmt"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/cache"
	"github.com/kleascm/akaylee-learner/pkg/experiment"
	"github.com/kleascm/akaylee-learner/pkg/interfaces"
	"github.com/kleascm/akaylee-learner/pkg/learner"
	"github.com/kleascm/akaylee-learner/pkg/monitoring"
	"github.com/kleascm/akaylee-learner/pkg/oracle"
	"github.com/kleascm/akaylee-learner/pkg/reporting"
	"github.com/kleascm/akaylee-learner/pkg/sul"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// session holds the resources of one learning run
type session struct {
	cfg       experiment.Config
	target    *sul.Target
	log       *logrus.Logger
	collector *monitoring.MetricsCollector
	status    *monitoring.StatusServer
	store     cache.Store
	closers   []func()
}

func newSession(ctx context.Context) (*session, error) {
	cfg := experimentConfig()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	target, err := sul.LoadTarget(viper.GetString("target"))
	if err != nil {
		return nil, err
	}
	if kind := viper.GetString("kind"); kind != "" && sul.Kind(kind) != target.Kind {
		return nil, fmt.Errorf("target file describes a %s target, not %s", target.Kind, kind)
	}

	s := &session{cfg: cfg, target: target, log: log()}
	s.collector = monitoring.NewMetricsCollector(s.log)
	s.collector.Start(ctx)
	s.closers = append(s.closers, s.collector.Stop)

	if err := s.openCache(); err != nil {
		s.close()
		return nil, err
	}
	if addr := viper.GetString("status_addr"); addr != "" {
		s.status = monitoring.NewStatusServer(s.collector, s.log)
		bound, err := s.status.Start(addr)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to start status server: %w", err)
		}
		s.log.WithField("address", bound).Info("Status server listening")
		s.closers = append(s.closers, func() { _ = s.status.Shutdown(context.Background()) })
	}
	return s, nil
}

func (s *session) openCache() error {
	switch viper.GetString("cache") {
	case "":
		return nil
	case "memory":
		s.store = cache.NewMemoryStore()
	case "redis":
		s.store = cache.NewRedisStore(viper.GetString("redis_addr"), "", 0)
	case "badger":
		store, err := cache.OpenBadgerStore(cache.BadgerConfig{Path: viper.GetString("cache_dir"), Logger: s.log})
		if err != nil {
			return err
		}
		s.store = store
	default:
		return fmt.Errorf("unknown cache %q", viper.GetString("cache"))
	}
	s.closers = append(s.closers, func() { _ = s.store.Close() })
	return nil
}

// close releases resources in reverse order
func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// transducerOracle answers output queries on the target
func (s *session) transducerOracle(ctx context.Context) (interfaces.MembershipOracle[string, automata.Word[string]], error) {
	t := s.target
	workers := s.cfg.Workers
	switch t.Kind {
	case sul.KindProcess:
		return oracle.NewPooledSULOracle(workers, func() (interfaces.SUL[string, string], error) {
			return sul.NewProcessSUL(*t.Process, s.log)
		})
	case sul.KindHTTP:
		return oracle.NewPooledSULOracle(workers, func() (interfaces.SUL[string, string], error) {
			return sul.NewHTTPSUL(*t.HTTP, s.log)
		})
	case sul.KindBrowser:
		b, err := sul.NewBrowserSUL(*t.Browser, s.log)
		if err != nil {
			return nil, err
		}
		if err := b.Start(ctx); err != nil {
			return nil, err
		}
		s.closers = append(s.closers, b.Stop)
		return oracle.NewSULOracle[string, string](b), nil
	case sul.KindSimulated:
		m, err := t.Simulated.Mealy()
		if err != nil {
			return nil, err
		}
		return oracle.NewPooledSULOracle(workers, func() (interfaces.SUL[string, string], error) {
			return sul.NewMealySimulator(m), nil
		})
	default:
		return nil, fmt.Errorf("unknown target kind %q", t.Kind)
	}
}

// acceptorOracle answers acceptance queries on the target
func (s *session) acceptorOracle(ctx context.Context) (interfaces.MembershipOracle[string, bool], error) {
	if s.target.Kind == sul.KindSimulated {
		d, err := s.target.Simulated.DFA()
		if err != nil {
			return nil, err
		}
		return oracle.NewAcceptorOracle[string](sul.NewDFASimulator(d)), nil
	}
	if s.cfg.AcceptOutput == "" {
		return nil, fmt.Errorf("learning %s targets as acceptors requires --accept-output", s.target.Kind)
	}
	mq, err := s.transducerOracle(ctx)
	if err != nil {
		return nil, err
	}
	return oracle.LastOutputAcceptor[string, string](mq, s.cfg.AcceptOutput, false), nil
}

// outcome is the domain-independent result of a run
type outcome struct {
	result reporting.RunSummary
	model  *reporting.ModelExport
}

// modelKind bundles what differs between acceptors and transducers
type modelKind[D any, M any] struct {
	domain  learner.Domain[string, D]
	predict oracle.Predictor[string, M, D]
	equal   func(a, b D) bool
	adapt   func(*learner.Hypothesis[string, D]) M
	export  func(M, []string) *reporting.ModelExport
}

var acceptorKind = modelKind[bool, *automata.DFA[string]]{
	domain:  learner.Acceptor[string](),
	predict: oracle.DFAPredictor[string](),
	equal:   oracle.BoolEqual,
	adapt:   learner.ToDFA[string],
	export:  reporting.FromDFA[string],
}

var transducerKind = modelKind[automata.Word[string], *automata.Mealy[string, string]]{
	domain:  learner.Transducer[string, string](),
	predict: oracle.MealyPredictor[string, string](),
	equal:   oracle.WordEqual[string],
	adapt:   learner.ToMealy[string, string],
	export:  reporting.FromMealy[string, string],
}

// learn runs the experiment for one model kind and returns the model
func learn[D any, M any](ctx context.Context, s *session, k modelKind[D, M], raw interfaces.MembershipOracle[string, D]) (*experiment.Result[string, D, M], *reporting.ModelExport, error) {
	var mq interfaces.MembershipOracle[string, D] = oracle.NewCounterOracle[string, D](raw, s.collector)
	if s.store != nil {
		cached := oracle.NewCacheOracle[string, D](mq, s.store, s.target.Name+"/"+s.cfg.Domain, s.log)
		cached.SetCollector(s.collector)
		mq = cached
	}

	l := learner.New(automata.NewAlphabet(s.target.Alphabet...), k.domain, mq, nil)
	l.SetLogger(s.log)

	var eq interfaces.EquivalenceOracle[string, M]
	switch s.cfg.Equivalence {
	case experiment.EquivalenceComplete:
		o := oracle.NewCompleteExplorationOracle[string, M, D](mq, k.predict, k.equal, s.cfg.MinLength, s.cfg.MaxDepth, s.cfg.Workers)
		o.SetLogger(s.log)
		o.SetCollector(s.collector)
		eq = o
	default:
		o := oracle.NewRandomWordsOracle[string, M, D](mq, k.predict, k.equal, oracle.RandomWordsConfig{
			Count:     s.cfg.RandomWords,
			MinLength: s.cfg.MinLength,
			MaxLength: s.cfg.MaxLength,
			Seed:      s.cfg.Seed,
			Workers:   s.cfg.Workers,
		})
		o.SetLogger(s.log)
		o.SetCollector(s.collector)
		eq = o
	}

	res, err := experiment.Run(ctx, l, eq, k.adapt, experiment.Options[string, D, M]{
		MaxRounds: s.cfg.MaxRounds,
		Grow:      s.cfg.Grow(),
		Logger:    s.log,
		Collector: s.collector,
		OnRound: func(r experiment.Round[string, D, M]) {
			if logger != nil {
				logger.LogHypothesis(r.Number, r.Hypothesis.Size(), r.Stats.ShortPrefixes)
			}
			if s.status != nil {
				s.status.SetPhase(l.Phase().String())
				s.status.SetHypothesis(k.export(r.Model, r.Hypothesis.Alphabet()).DOT())
			}
		},
	})
	if err != nil {
		return nil, nil, err
	}
	if s.status != nil {
		s.status.SetPhase(l.Phase().String())
	}
	model := k.export(res.Model, l.Symbols())
	model.Name = s.target.Name
	return res, model, nil
}

func summarize[I comparable, D any, M any](s *session, res *experiment.Result[I, D, M], model *reporting.ModelExport) outcome {
	ces := make([]string, len(res.Counterexamples))
	for i, ce := range res.Counterexamples {
		ces[i] = ce.String()
	}
	return outcome{
		result: reporting.RunSummary{
			Target:          s.target.Name,
			Domain:          s.cfg.Domain,
			Rounds:          res.Rounds,
			States:          res.States,
			Converged:       res.Converged,
			Duration:        res.Duration,
			Counterexamples: ces,
		},
		model: model,
	}
}

// run learns the target in the configured domain
func (s *session) run(ctx context.Context) (outcome, error) {
	if s.cfg.Domain == experiment.DomainAcceptor {
		mq, err := s.acceptorOracle(ctx)
		if err != nil {
			return outcome{}, err
		}
		res, model, err := learn(ctx, s, acceptorKind, mq)
		if err != nil {
			return outcome{}, err
		}
		return summarize(s, res, model), nil
	}
	mq, err := s.transducerOracle(ctx)
	if err != nil {
		return outcome{}, err
	}
	res, model, err := learn(ctx, s, transducerKind, mq)
	if err != nil {
		return outcome{}, err
	}
	return summarize(s, res, model), nil
}
