/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"io"
	"os"

	"github.com/allbin/switchhub/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string

	// Resolved in PersistentPreRunE, before any command runs.
	cfg       *config.Config
	logger    *logrus.Logger
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "switchhub",
	Short: "Run scripted console workflows against devices on serial ports",
	Long: `switchhub drives the serial consoles of switches, routers and other
devices with declarative workflows: send a command, wait for a prompt,
page through --More-- output, or hammer a boot loader with breaks until
it gives up its ROM monitor.

Workflows are JSON or YAML files, by default read from ./workflows.

Settings come from flags, SWITCHHUB_* environment variables (a .env file
in the working directory is loaded first) and switchhub.yaml.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./switchhub.yaml or $HOME/.config/switchhub/switchhub.yaml)")
	flags.IntP("baud", "b", 9600, "Baud rate for every port")
	flags.StringP("workflows", "w", "workflows", "Directory holding workflow descriptions")
	flags.Duration("poll-interval", 0, "Idle delay between input polls (default 10ms)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("log-file", "", "Write logs to this file instead of stderr")

	viper.BindPFlag(config.KeyBaud, flags.Lookup("baud"))
	viper.BindPFlag(config.KeyWorkflowsDir, flags.Lookup("workflows"))
	viper.BindPFlag(config.KeyPollInterval, flags.Lookup("poll-interval"))
	viper.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	viper.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	viper.BindPFlag(config.KeyLogFile, flags.Lookup("log-file"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	c, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return err
	}

	l, closer, err := c.NewLogger()
	if err != nil {
		return err
	}

	cfg, logger, logCloser = c, l, closer
	logger.WithFields(logrus.Fields{
		"config": viper.ConfigFileUsed(),
		"baud":   cfg.Baud,
	}).Debug("configuration loaded")
	return nil
}
