package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yoockh/scribely/internal/apiclient"
	"github.com/yoockh/scribely/internal/recording"
)

func configCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change client settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set-server <url>",
			Short: "Set the intake server URL",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := apiclient.Normalize(args[0])
				if err != nil {
					return err
				}
				if err := c.store.SetServerURL(u.String()); err != nil {
					return fmt.Errorf("failed to save server URL: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Server URL set to %s\n", u)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the current settings",
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := c.store.Load()
				if err != nil {
					return err
				}
				token := ""
				if s.AuthToken != "" {
					token = "(set)"
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "settings file: %s\n", c.store.Path())
				fmt.Fprintf(out, "server_url:    %s\n", s.ServerURL)
				fmt.Fprintf(out, "fallback_dir:  %s\n", s.FallbackDir)
				fmt.Fprintf(out, "auth_token:    %s\n", token)
				return nil
			},
		},
	)
	return cmd
}

func uploadCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a finished recording, saving it locally if the server is unreachable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("recording file: %w", err)
			}
			s, err := c.store.Load()
			if err != nil {
				return err
			}

			backend := apiclient.NewHTTPBackend(c.store, apiclient.WithToken(c.store.Token))
			orch := recording.NewOrchestrator(backend, recording.NewLocalStore(s.FallbackDir, c.log), c.log)
			session := recording.NewSession(recording.NewMachine(), orch, c.notifier(cmd), c.log)

			if err := session.Begin(cmd.Context(), path); err != nil {
				return err
			}
			if err := session.End(); err != nil {
				return err
			}
			if ue, ok := session.Wait().(recording.UploadError); ok {
				return ue
			}
			return nil
		},
	}
}

func textCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "text <text...>",
		Short: "Send a typed transcript for processing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireServer(c); err != nil {
				return err
			}
			client, err := apiclient.NewBuilder(c.store, apiclient.WithToken(c.store.Token)).New()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), apiclient.RequestTimeout)
			defer cancel()

			resp, err := client.ProcessText(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printResponse(cmd, resp)
		},
	}
}

func healthCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is up",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireServer(c); err != nil {
				return err
			}
			client, err := apiclient.NewBuilder(c.store, apiclient.WithToken(c.store.Token)).New()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			h, err := client.Health(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is %s (%s)\n", client.BaseURL(), h.Status, h.Service)
			return nil
		},
	}
}

func printResponse(cmd *cobra.Command, resp *apiclient.Response) error {
	if resp.Body == nil {
		return fmt.Errorf("server returned http %d", resp.StatusCode)
	}
	if !resp.OK() {
		if resp.Body.Error != nil {
			return errors.New(*resp.Body.Error)
		}
		return fmt.Errorf("server returned http %d", resp.StatusCode)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp.Body)
}
