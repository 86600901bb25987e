package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"akreditasi-jurnal/internal/auth"
	"akreditasi-jurnal/internal/config"
)

func newKeygenCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ECDSA P-256 signing key for JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := auth.GenerateKeyPEM()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(key)
				return err
			}
			if err := os.WriteFile(out, key, 0o600); err != nil {
				return fmt.Errorf("write key: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "key written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the PEM key to this file instead of stdout")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		userID uint
		email  string
		roles  []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			token, jti, err := auth.NewService(&cfg.JWT).GenerateToken(userID, email, roles)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "jti %s, expires in %s\n", jti, cfg.JWT.Expiration)
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "User ID (required)")
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringSliceVar(&roles, "role", []string{auth.RoleDikti}, "Role to grant, repeatable")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
