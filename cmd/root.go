package cmd

import (
	"fmt"
	"os"

	"github.com/andrejsstepanovs/proposalpilot/config"
	"github.com/andrejsstepanovs/proposalpilot/db"
	"github.com/andrejsstepanovs/proposalpilot/logger"
	"github.com/spf13/cobra"
)

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposalpilot",
		Short: "Interactive console for tracking clients, sales proposals and templated replies",
		Long: "Proposal Pilot keeps clients, proposals and standard replies in a local sqlite file.\n" +
			"It starts a numbered menu; choose 0 to quit.",
		Args: cobra.NoArgs,
		Run:  app.handleRun,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	return cmd
}

func (a *App) handleRun(cmd *cobra.Command, _ []string) {
	conn, err := db.InitDB(a.cfg.DatabasePath)
	if err != nil {
		fmt.Printf("Error opening database: %v\n", err)
		logger.WithOp("startup").WithError(err).Error("could not open database")
		os.Exit(1)
	}
	defer conn.Close()

	a.wire(conn, os.Stdin, os.Stdout)
	logger.WithOp("startup").WithField("db", a.cfg.DatabasePath).Info("session started")

	if err := a.Run(cmd.Context()); err != nil {
		fmt.Printf("Error: %v\n", err)
		logger.WithOp("session").WithError(err).Error("session ended with error")
	}
	logger.WithOp("session").Info("session finished")
}

// Execute initializes and runs the root command. It is the single entry point
// for the command-line interface.
func Execute() {
	cfg := config.Load()

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Printf("Warning: logging disabled, cannot open %s: %v\n", cfg.LogFile, err)
	} else {
		defer logFile.Close()
		logger.Init(cfg.LogLevel, logFile)
		if cfg.LogFormat == "json" {
			logger.SetJSONFormatter()
		}
	}

	app := &App{cfg: cfg}
	rootCmd := newRootCmd(app)
	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error, so we just need to exit.
		os.Exit(1)
	}
}
