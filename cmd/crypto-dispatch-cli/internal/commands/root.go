package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the crypto-dispatch-cli command tree.
func NewRootCommand() (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:   "crypto-dispatch-cli",
		Short: "Cryptographic operations CLI tool",
		Long: `crypto-dispatch-cli runs the dispatcher verbs against files:
digest, generate-key, import-key, encrypt, decrypt, sign and verify.
Keys are stored as jwk, pem (pkcs8 or spki) or raw files.`,
		SilenceUsage: true,
	}

	handler, err := NewCommandHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to create command handler: %w", err)
	}

	InitKeyCommands(rootCmd, handler)
	InitOperationCommands(rootCmd, handler)
	return rootCmd, nil
}
