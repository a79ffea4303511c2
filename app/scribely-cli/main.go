package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yoockh/scribely/internal/logger"
	"github.com/yoockh/scribely/internal/notify"
	"github.com/yoockh/scribely/internal/settings"
)

type cli struct {
	configPath string
	verbose    bool
	desktop    bool

	log   *logrus.Logger
	store *settings.Store
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "scribely",
		Short:         "Send voice notes to a scribely server",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "settings file (default <config dir>/scribely/settings.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&c.desktop, "desktop", false, "also send desktop notifications")

	root.AddCommand(
		configCmd(c),
		uploadCmd(c),
		textCmd(c),
		healthCmd(c),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	c.log = logger.NewCLI(cmd.ErrOrStderr(), c.verbose)

	path := c.configPath
	if path == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	c.store = settings.NewStore(path)
	c.log.WithField("settings", path).Debug("using settings file")
	return nil
}

func (c *cli) notifier(cmd *cobra.Command) notify.Notifier {
	console := notify.Console{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
	if c.desktop {
		return notify.Multi{console, notify.NewDesktop(c.log)}
	}
	return console
}

func requireServer(c *cli) error {
	if c.store.ServerURL() == "" {
		return fmt.Errorf("no server configured, run: scribely config set-server <url>")
	}
	return nil
}
