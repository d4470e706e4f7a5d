/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Experiment configuration and validation.
*/

package experiment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Equivalence strategies
const (
	EquivalenceRandom   = "random"
	EquivalenceComplete = "complete"
)

// Domains
const (
	DomainAcceptor   = "acceptor"
	DomainTransducer = "transducer"
)

// Config holds the user-facing experiment settings
type Config struct {
	Domain      string `mapstructure:"domain" yaml:"domain" json:"domain" validate:"required,oneof=acceptor transducer"`
	MaxRounds   int    `mapstructure:"max_rounds" yaml:"max_rounds" json:"max_rounds" validate:"gte=1"`
	Equivalence string `mapstructure:"equivalence" yaml:"equivalence" json:"equivalence" validate:"required,oneof=random complete"`
	RandomWords int    `mapstructure:"random_words" yaml:"random_words" json:"random_words" validate:"required_if=Equivalence random,gte=0"`
	MinLength   int    `mapstructure:"min_length" yaml:"min_length" json:"min_length" validate:"gte=0"`
	MaxLength   int    `mapstructure:"max_length" yaml:"max_length" json:"max_length" validate:"gtefield=MinLength"`
	MaxDepth    int    `mapstructure:"max_depth" yaml:"max_depth" json:"max_depth" validate:"gte=0,lte=16"`
	Seed        int64  `mapstructure:"seed" yaml:"seed" json:"seed"`
	Workers     int    `mapstructure:"workers" yaml:"workers" json:"workers" validate:"gte=1,lte=256"`
	// AcceptOutput is the last output that marks a word accepted when a
	// transducer target is learned as an acceptor
	AcceptOutput string `mapstructure:"accept_output" yaml:"accept_output" json:"accept_output"`
	// GrowAtRound adds GrowSymbols to the alphabet at the start of that round
	GrowAtRound int      `mapstructure:"grow_at_round" yaml:"grow_at_round" json:"grow_at_round" validate:"gte=0"`
	GrowSymbols []string `mapstructure:"grow_symbols" yaml:"grow_symbols" json:"grow_symbols" validate:"required_with=GrowAtRound,dive,required"`
}

// DefaultConfig returns the defaults used by the CLI
func DefaultConfig() Config {
	return Config{
		Domain:      DomainTransducer,
		MaxRounds:   100,
		Equivalence: EquivalenceRandom,
		RandomWords: 2000,
		MinLength:   1,
		MaxLength:   20,
		MaxDepth:    4,
		Seed:        1,
		Workers:     1,
	}
}

var validate = validator.New()

// Validate checks the configuration
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid experiment config: %s", strings.Join(msgs, ", "))
}

// Grow returns the alphabet growth schedule
func (c Config) Grow() map[int][]string {
	if c.GrowAtRound == 0 || len(c.GrowSymbols) == 0 {
		return nil
	}
	return map[int][]string{c.GrowAtRound: c.GrowSymbols}
}
