/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: helpers_test.go
Description: Shared helpers for white-box learner tests.
*/

package learner

import (
	"context"
	"io"

	"github.com/kleascm/akaylee-learner/pkg/automata"
	"github.com/sirupsen/logrus"
)

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type memberFunc func(ctx context.Context, prefix, suffix automata.Word[string]) (bool, error)

func (f memberFunc) Answer(ctx context.Context, prefix, suffix automata.Word[string]) (bool, error) {
	return f(ctx, prefix, suffix)
}
