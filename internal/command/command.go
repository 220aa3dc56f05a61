// Package command implements the ringfile command line tool.
package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	ringfile "github.com/luhtfiimanal/go-ringfile"
	"github.com/luhtfiimanal/go-ringfile/internal/log"
)

// app holds the global flags and the state derived from them.
type app struct {
	verbose    bool
	configPath string
	noLock     bool

	opts        ringfile.Options
	defaultSize uint64 // total file size for new rings, from the config file
	log         *zap.Logger
}

// NewRootCommand builds the command tree. Every call returns an independent
// tree, so tests can execute several in one process.
func NewRootCommand() *cobra.Command {
	a := &app{}
	c := &cobra.Command{
		Use:               "ringfile",
		Short:             "Read, append to and inspect ring files",
		Long:              "ringfile manages fixed-size files that keep the newest records and drop the oldest.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	c.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	c.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML options file")
	c.PersistentFlags().BoolVar(&a.noLock, "no-lock", false, "do not take an advisory lock on FILE")

	c.AddCommand(a.readCommand(), a.appendCommand(), a.statCommand())
	return c
}

// Execute runs the command line and returns the process exit status.
func Execute() int {
	c := NewRootCommand()
	if err := c.Execute(); err != nil {
		fmt.Fprintln(c.ErrOrStderr(), err)
		return 1
	}
	return 0
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.log = log.New(cmd.ErrOrStderr(), log.ForVerbosity(a.verbose))
	a.opts = ringfile.DefaultOptions()
	if a.configPath != "" {
		cfg, err := ringfile.LoadConfig(a.configPath)
		if err != nil {
			return fmt.Errorf("%s: %w", a.configPath, err)
		}
		a.opts = cfg.Apply(a.opts)
		a.defaultSize = cfg.DefaultSize
		a.log.Debug("loaded config", zap.String("config", a.configPath))
	}
	a.opts.Logger = a.log
	return nil
}

// lock takes the advisory lock on path unless --no-lock was given.
func (a *app) lock(path string, exclusive bool) (func() error, error) {
	if a.noLock {
		return func() error { return nil }, nil
	}
	return lockFile(path, exclusive)
}
