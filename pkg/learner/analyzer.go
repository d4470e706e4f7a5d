/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: analyzer.go
Description: Counterexample analysis. A binary search over the split points of a
counterexample locates the first position where the hypothesis' prediction
stops matching the target, checking every short prefix of the intermediate
state rather than a single representative. The prefix extension at that point
is promoted to a short prefix and follow-up witnesses are queued.
*/

package learner

import (
	"context"
	"fmt"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/sirupsen/logrus"
)

// longestShortPrefix walks ce through the prefix tree while nodes are short
func (l *Learner[I, D]) longestShortPrefix(ce automata.Word[I]) (int, int) {
	node, n := rootPrefix, 0
	for n < len(ce) {
		c, ok := l.pt.existingChild(node, ce[n])
		if !ok || !l.pt.isShort(c) {
			break
		}
		node = c
		n++
	}
	return node, n
}

// divergence checks every short prefix u of the state reached by ce[:mid]
// against the hypothesis on ce[mid:]. It returns u·ce[mid] for the first u
// whose system answer differs from the prediction.
func (l *Learner[I, D]) divergence(ctx context.Context, ce automata.Word[I], mid int) (int, bool, error) {
	q, err := l.run(ctx, ce.Prefix(mid))
	if err != nil {
		return 0, false, err
	}
	suffix := ce.Suffix(mid)
	predicted, err := l.domain.predict(ctx, l, q, suffix)
	if err != nil {
		return 0, false, err
	}
	ref := l.dt.suffixes.intern(suffix)
	shorts := append([]int(nil), l.dt.nodes[q].short...)
	for _, u := range shorts {
		actual, err := l.dt.lookup(ctx, u, ref)
		if err != nil {
			return 0, false, err
		}
		if !l.domain.equal(actual, predicted) {
			return l.pt.child(u, suffix[0]), true, nil
		}
	}
	return 0, false, nil
}

// analyze processes a counterexample, promoting exactly one new short prefix
func (l *Learner[I, D]) analyze(ctx context.Context, ce automata.Word[I]) error {
	lsp, lower := l.longestShortPrefix(ce)
	if lower >= len(ce) {
		return fmt.Errorf("%w: counterexample %s is covered by short prefixes", ErrInconsistentOracle, ce)
	}
	upper := l.domain.MaxSearchIndex(len(ce))

	ua := -1
	for upper-lower > 1 {
		mid := (upper + lower) / 2
		ext, diverged, err := l.divergence(ctx, ce, mid)
		if err != nil {
			return err
		}
		if diverged {
			ua = ext
			lower = mid
		} else {
			upper = mid
		}
	}
	if ua < 0 {
		ua = l.pt.child(lsp, ce[lower])
	}

	mid := (upper + lower) / 2
	sprime := ce.Suffix(mid + 1)

	if l.pt.isShort(ua) {
		return fmt.Errorf("%w: analysis of %s selected %s which is already short",
			ErrInvariant, ce, l.pt.word(ua))
	}
	if l.pt.state(ua) == noState {
		if _, err := l.dt.sift(ctx, ua); err != nil {
			return err
		}
	}
	target := l.pt.state(ua)
	for _, u := range l.dt.nodes[target].short {
		if u == ua {
			continue
		}
		l.witnesses.push(&witness[I, D]{prefix: u, suffix: sprime})
	}
	l.witnesses.push(&witness[I, D]{prefix: ua, suffix: sprime})
	l.dt.promote(ua)

	l.logger.WithFields(logrus.Fields{
		"counterexample": ce.String(),
		"index":          mid,
		"promoted":       l.pt.word(ua).String(),
		"suffix":         sprime.String(),
	}).Debug("Analyzed counterexample")
	return nil
}
