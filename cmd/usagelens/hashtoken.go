package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/artpar/usagelens/adapters/hasher"
)

var hashTokenPlain string

var hashTokenCmd = &cobra.Command{
	Use:   "hash-token",
	Short: "Generate a bcrypt hash for the API access token",
	Long: `Generate the bcrypt hash to put in auth.token_hash. If --token is not
provided, you will be prompted to enter it without echo.

Example:
  usagelens hash-token
  USAGELENS_AUTH_TOKEN_HASH=$(usagelens hash-token --token secret) usagelens serve`,
	RunE: runHashToken,
}

func runHashToken(cmd *cobra.Command, args []string) error {
	token := hashTokenPlain
	if token == "" {
		fmt.Fprint(os.Stderr, "Token: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		token = string(raw)
	}
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}

	hash, err := hasher.NewBcrypt(0).Hash(token)
	if err != nil {
		return fmt.Errorf("hash token: %w", err)
	}
	fmt.Println(string(hash))
	return nil
}

func init() {
	rootCmd.AddCommand(hashTokenCmd)
	hashTokenCmd.Flags().StringVar(&hashTokenPlain, "token", "", "Token to hash (omit to prompt)")
}
