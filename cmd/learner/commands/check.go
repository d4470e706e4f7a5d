/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Check command implementation. Learns a simulated target and
compares the learned model with the described machine.
*/

package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/kleascm/akaylee-learner/pkg/experiment"
	"github.com/kleascm/akaylee-learner/pkg/sul"
	"github.com/spf13/cobra"
)

// RunCheck learns a simulated target and verifies the result
func RunCheck(cmd *cobra.Command, args []string) error {
	if err := bindLearnFlags(cmd); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt)
	defer stop()

	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()
	if s.target.Kind != sul.KindSimulated {
		return fmt.Errorf("check needs a simulated target, got %s", s.target.Kind)
	}

	var (
		out    outcome
		differ bool
		ce     automata.Word[string]
	)
	if s.cfg.Domain == experiment.DomainAcceptor {
		want, err := s.target.Simulated.DFA()
		if err != nil {
			return err
		}
		mq, err := s.acceptorOracle(ctx)
		if err != nil {
			return err
		}
		res, model, err := learn(ctx, s, acceptorKind, mq)
		if err != nil {
			return err
		}
		out = summarize(s, res, model)
		ce, differ = automata.SeparatingWordDFA(want, res.Model, s.target.Alphabet)
	} else {
		want, err := s.target.Simulated.Mealy()
		if err != nil {
			return err
		}
		mq, err := s.transducerOracle(ctx)
		if err != nil {
			return err
		}
		res, model, err := learn(ctx, s, transducerKind, mq)
		if err != nil {
			return err
		}
		out = summarize(s, res, model)
		ce, differ = automata.SeparatingWordMealy(want, res.Model, s.target.Alphabet)
	}

	fmt.Fprintln(cmd.OutOrStdout(), RenderSummary(out.result, s.collector.Snapshot()))
	if differ {
		return fmt.Errorf("learned model differs from %s on %s", s.target.Name, ce)
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.Success.Render("✓ learned model is equivalent to the target"))
	return nil
}
