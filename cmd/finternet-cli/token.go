package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/finternet/finternet-backend/utils"
	"github.com/spf13/cobra"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a signed bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("sub")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			key, _ := cmd.Flags().GetString("key")

			if key == "" {
				c, err := loadConfig(cmd)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				key = c.SigningKey
			}

			token, err := utils.NewJWTTokenWithKey(key).CreateToken(subject, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringP("sub", "s", "", "Subject (caller id) carried by the token")
	cmd.Flags().Duration("ttl", time.Hour, "Token lifetime")
	cmd.Flags().String("key", "", "Signing key, defaults to SIGNING_KEY from config")
	_ = cmd.MarkFlagRequired("sub")

	return cmd
}

func whoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami [token]",
		Short: "Verify a token and print the caller it resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, _ := cmd.Flags().GetString("key")
			if key == "" {
				c, err := loadConfig(cmd)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				key = c.SigningKey
			}

			caller, err := utils.NewJWTTokenWithKey(key).Authenticate(args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(caller)
		},
	}

	cmd.Flags().String("key", "", "Signing key, defaults to SIGNING_KEY from config")

	return cmd
}
