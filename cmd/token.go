package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/itihaas-labs/timeline-server/internal/model"
	"github.com/itihaas-labs/timeline-server/internal/server"
)

var (
	tokenUser string
	tokenRole string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.JWTSecret == "" {
			return eris.New("auth.jwt_secret is not configured")
		}
		if tokenUser == "" {
			return eris.New("--user is required")
		}
		role := model.Role(tokenRole)
		if role != model.RoleAdmin && role != model.RoleUser {
			return eris.Errorf("unknown role %q", tokenRole)
		}

		ttl := time.Duration(cfg.Auth.TokenTTLHrs) * time.Hour
		token, err := server.IssueToken(cfg.Auth.JWTSecret, tokenUser, role, ttl)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "user id (subject claim)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "user", "role claim (user or admin)")
	rootCmd.AddCommand(tokenCmd)
}
