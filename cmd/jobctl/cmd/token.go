package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/job-portal/internal/auth"
	"github.com/spec-kit/job-portal/internal/config"
	"github.com/spec-kit/job-portal/internal/domain"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed bearer token for local testing",
	Long: `Signs a token with AUTH_JWT_SECRET. Production tokens come from the identity
provider; this exists for development and smoke tests.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Auth.Validate(); err != nil {
			return err
		}
		principal, err := principalFromFlags(cmd)
		if err != nil {
			return err
		}
		token, expiresAt, err := auth.NewTokenManager(cfg.Auth).GenerateToken(principal)
		if err != nil {
			return err
		}
		cmd.Println(token)
		cmd.PrintErrf("expires at %s\n", expiresAt.Format(time.RFC3339))
		return nil
	},
}

func principalFromFlags(cmd *cobra.Command) (domain.Principal, error) {
	subject, _ := cmd.Flags().GetString("subject")
	role, _ := cmd.Flags().GetString("role")
	verified, _ := cmd.Flags().GetBool("verified")

	principal := domain.Principal{ID: subject, Role: domain.Role(role), Verified: verified}
	if principal.ID == "" {
		return domain.Principal{}, fmt.Errorf("--subject is required")
	}
	if !principal.Role.Valid() {
		return domain.Principal{}, fmt.Errorf("unknown role %q", role)
	}
	if verified && principal.Role != domain.RoleHiringManager {
		return domain.Principal{}, fmt.Errorf("--verified only applies to hiring_manager")
	}
	return principal, nil
}

func init() {
	tokenCmd.Flags().String("subject", "", "principal id")
	tokenCmd.Flags().String("role", string(domain.RoleStudent), "student, hiring_manager or admin")
	tokenCmd.Flags().Bool("verified", false, "mark a hiring manager as verified")
	rootCmd.AddCommand(tokenCmd)
}
