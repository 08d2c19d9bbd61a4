package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-badgr-client/badgr"
	"github.com/jrsteele09/go-badgr-client/internal/config"
)

// newClient builds a client from BADGR_* environment variables.
func newClient(ctx context.Context, logger zerolog.Logger) (*badgr.Client, error) {
	cfg := config.FromEnv()
	cfg.Logger = &logger
	return badgr.New(ctx, cfg)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printEntities[T badgr.Entity](entities []T) error {
	data := make([]map[string]any, 0, len(entities))
	for _, e := range entities {
		data = append(data, e.RawData())
	}
	return printJSON(data)
}

func newIssuersCommand(logger func() zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "issuers [entity-id]",
		Short: "List the authenticated user's issuers, or fetch one by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context(), logger())
			if err != nil {
				return err
			}
			eid := ""
			if len(args) > 0 {
				eid = args[0]
			}
			issuers, err := client.FetchIssuer(cmd.Context(), eid)
			if err != nil {
				return err
			}
			return printEntities(issuers)
		},
	}
}

func newBadgesCommand(logger func() zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "badges <issuer-entity-id>",
		Short: "List an issuer's badgeclasses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context(), logger())
			if err != nil {
				return err
			}
			issuer := badgr.NewIssuer(client, args[0])
			badges, err := issuer.FetchBadgeClasses(cmd.Context(), true)
			if err != nil {
				return err
			}
			return printEntities(badges)
		},
	}
}

func newIssueCommand(logger func() zerolog.Logger) *cobra.Command {
	var (
		narrative string
		notify    bool
	)

	cmd := &cobra.Command{
		Use:   "issue <badge-entity-id> <recipient-email>",
		Short: "Issue a badge to a recipient",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context(), logger())
			if err != nil {
				return err
			}
			badge := badgr.NewBadgeClass(client, args[0])
			assertion, err := badge.Issue(cmd.Context(), badgr.AssertionParams{
				RecipientEmail: args[1],
				Narrative:      narrative,
				Notify:         &notify,
			})
			if err != nil {
				return err
			}
			fmt.Println(assertion.EntityID())
			return nil
		},
	}

	cmd.Flags().StringVar(&narrative, "narrative", "", "Describe how the badge was earned")
	cmd.Flags().BoolVar(&notify, "notify", true, "Notify the recipient by email")
	return cmd
}

func newRevokeCommand(logger func() zerolog.Logger) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "revoke <assertion-entity-id>...",
		Short: "Revoke one or more assertions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context(), logger())
			if err != nil {
				return err
			}
			if _, err := client.RevokeAssertions(cmd.Context(), args, reason); err != nil {
				return err
			}
			fmt.Printf("revoked %d assertion(s)\n", len(args))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Revocation reason")
	return cmd
}

func newWhoamiCommand(logger func() zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the claims of the current bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(cmd.Context(), logger())
			if err != nil {
				return err
			}
			claims, err := client.Tokens().Introspect()
			if err != nil {
				return err
			}
			return printJSON(claims)
		},
	}
}
