package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arnavshah/clockin-api-go/pkg/auth"
	"github.com/arnavshah/clockin-api-go/pkg/config"
	"github.com/arnavshah/clockin-api-go/pkg/models"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd mints a bearer token for an existing user id, signed with JWT_SECRET
func newRootCmd(out io.Writer) *cobra.Command {
	var (
		userID string
		email  string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "tokengen",
		Short: "Generate a bearer token for local testing",
		Long: `Generate a signed access token for a user id and role.

The signing secret and default lifetime come from the same .env / environment
the server reads (JWT_SECRET, TOKEN_TTL).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.Role(role)
			if !r.Valid() {
				return fmt.Errorf("role must be worker or manager, got %q", role)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.TokenTTL
			}

			token, err := auth.NewIssuer(cfg.Secret(), ttl).CreateToken(userID, email, r)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Generated %s token for %s (expires in %s):\n%s\n", r, userID, ttl, token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "user id to embed in the token")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().StringVarP(&role, "role", "r", string(models.RoleWorker), "worker or manager")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to TOKEN_TTL")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
