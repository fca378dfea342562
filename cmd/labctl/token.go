package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/adapters/handler/middleware"
	"github.com/DanielPopoola/labresult-gateway/internal/config"
	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		secret  string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a staff bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv(config.EnvPrefix + "AUTH__JWT_SECRET")
			}
			if secret == "" {
				return errors.New("no signing secret: pass --secret or set " + config.EnvPrefix + "AUTH__JWT_SECRET")
			}

			r := domain.Role(role)
			if r != domain.RoleAdmin && r != domain.RoleEDEC {
				return fmt.Errorf("unknown role %q", role)
			}

			token, err := middleware.NewAuthenticator(secret, ttl, false).IssueToken(subject, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "", "User ID placed in the sub claim")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleEDEC), "Role (admin or edec)")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 12*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}
