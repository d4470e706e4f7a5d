/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for the Akaylee Learner. Infers state
machine models of black-box systems (local programs, web APIs, browser
applications or simulated machines) by active automata learning.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/akaylee-learner/cmd/learner/commands"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "akaylee-learner",
		Short: "Akaylee Learner - active automata learning for black-box systems",
		Long: `Akaylee Learner infers acceptor or transducer models of black-box systems by
asking membership queries and testing hypotheses. Targets are described in YAML and
can be local processes, HTTP APIs, browser applications or simulated machines.`,
		Version:       commands.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := commands.LoadConfig(); err != nil {
				return err
			}
			return commands.SetupLogging()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			commands.CloseLogging()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "learner", "Log format (text, json, custom, learner)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (empty for console only)")
	rootCmd.PersistentFlags().Int("log-max-files", 10, "Maximum number of log files to keep")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))

	learnCmd := &cobra.Command{
		Use:   "learn",
		Short: "Learn a model of a target",
		Long: `Learn a model of the target described by a YAML file. Learning alternates
hypothesis construction and equivalence testing until no counterexample is found
or the round limit is reached.`,
		RunE: commands.RunLearn,
	}
	commands.AddLearnFlags(learnCmd)
	learnCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(learnCmd)

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Learn a simulated target and verify exact equivalence",
		Long: `Learn a simulated target from its YAML description and compare the result
with the described machine. Exits non-zero when the learned model differs.`,
		RunE: commands.RunCheck,
	}
	commands.AddLearnFlags(checkCmd)
	checkCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(checkCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run:   commands.PrintVersion,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, commands.RenderError(err))
		os.Exit(1)
	}
}
