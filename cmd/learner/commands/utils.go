/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the Akaylee Learner commands. Provides
configuration loading, logging setup and flag registration used across all
command implementations.
*/

package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/kleascm/akaylee-learner/pkg/experiment"
	"github.com/kleascm/akaylee-learner/pkg/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is the release of the learner
const Version = "1.0.0"

var logger *logging.Logger

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("AKAYLEE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
	return nil
}

// SetupLogging configures the logging system
func SetupLogging() error {
	l, err := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.LogLevel(viper.GetString("log_level")),
		Format:    logging.LogFormat(viper.GetString("log_format")),
		OutputDir: viper.GetString("log_dir"),
		MaxFiles:  viper.GetInt("log_max_files"),
		Timestamp: true,
		Colors:    isTerminal(os.Stderr),
	}, os.Stderr)
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	logger = l
	return nil
}

// CloseLogging flushes and closes the log file
func CloseLogging() {
	if logger != nil {
		_ = logger.Close()
	}
}

func log() *logrus.Logger {
	if logger == nil {
		return logrus.StandardLogger()
	}
	return logger.GetLogger()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// AddLearnFlags registers the flags shared by learn and check
func AddLearnFlags(cmd *cobra.Command) {
	d := experiment.DefaultConfig()
	f := cmd.Flags()
	f.String("target", "", "Target description file (YAML, required)")
	f.String("kind", "", "Override target kind (process, http, browser, simulated)")
	f.String("domain", d.Domain, "Model type (acceptor, transducer)")
	f.String("eq", d.Equivalence, "Equivalence strategy (random, complete)")
	f.Int("rounds", d.MaxRounds, "Maximum refinement rounds")
	f.Int("random-words", d.RandomWords, "Random words per equivalence query")
	f.Int("min-length", d.MinLength, "Minimum random word length")
	f.Int("max-length", d.MaxLength, "Maximum random word length")
	f.Int("max-depth", d.MaxDepth, "Word length bound for complete exploration")
	f.Int64("seed", d.Seed, "Random seed")
	f.Int("workers", d.Workers, "Parallel target instances for equivalence testing")
	f.String("accept-output", "", "Output marking acceptance when learning an acceptor of a non-simulated target")
	f.Int("grow-at", 0, "Round at which --grow-symbols are added to the alphabet")
	f.StringSlice("grow-symbols", nil, "Symbols added to the alphabet at --grow-at")
	f.String("cache", "", "Query cache (memory, redis, badger; empty disables)")
	f.String("redis-addr", "localhost:6379", "Redis address for --cache redis")
	f.String("cache-dir", "./.akaylee-cache", "Badger directory for --cache badger")
	f.String("status-addr", "", "Address for the status server (empty disables)")
	f.String("output", "", "Write the learned model to this file")
	f.String("format", "dot", "Model output format (dot, json, yaml, html)")
}

// bindLearnFlags binds the flags of the running command; learn and check
// share keys so binding happens at run time
func bindLearnFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(fl *pflag.Flag) {
		if err == nil {
			err = viper.BindPFlag(strings.ReplaceAll(fl.Name, "-", "_"), fl)
		}
	})
	return err
}

// experimentConfig reads the experiment settings from viper
func experimentConfig() experiment.Config {
	return experiment.Config{
		Domain:       viper.GetString("domain"),
		MaxRounds:    viper.GetInt("rounds"),
		Equivalence:  viper.GetString("eq"),
		RandomWords:  viper.GetInt("random_words"),
		MinLength:    viper.GetInt("min_length"),
		MaxLength:    viper.GetInt("max_length"),
		MaxDepth:     viper.GetInt("max_depth"),
		Seed:         viper.GetInt64("seed"),
		Workers:      viper.GetInt("workers"),
		AcceptOutput: viper.GetString("accept_output"),
		GrowAtRound:  viper.GetInt("grow_at"),
		GrowSymbols:  viper.GetStringSlice("grow_symbols"),
	}
}
