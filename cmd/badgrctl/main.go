package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const appName = "badgrctl"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Command line client for badgr servers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	logger := func() zerolog.Logger {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	}

	cmd.AddCommand(newIssuersCommand(logger))
	cmd.AddCommand(newBadgesCommand(logger))
	cmd.AddCommand(newIssueCommand(logger))
	cmd.AddCommand(newRevokeCommand(logger))
	cmd.AddCommand(newWhoamiCommand(logger))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			figure.NewFigure(appName, "cybermedium", true).Print()
			fmt.Println()
			fmt.Println("badgrctl (go-badgr-client)")
		},
	}
}
