package commands

import (
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/infrastructure/cryptography"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// keyDescription is what import-key prints for an inspected key.
type keyDescription struct {
	Type        string                     `json:"type"`
	Algorithm   cryptoDomain.AlgorithmSpec `json:"algorithm"`
	Bits        int                        `json:"bits"`
	Extractable bool                       `json:"extractable"`
	Usages      []string                   `json:"usages"`
}

// GenerateKeyCmd generates a secret key or key pair and persists it in --key-dir
func (commandHandler *CommandHandler) GenerateKeyCmd(cmd *cobra.Command, _ []string) error {
	keyDir, _ := cmd.Flags().GetString("key-dir")
	format, _ := cmd.Flags().GetString("format")
	usageNames, _ := cmd.Flags().GetStringSlice("usages")

	_, alg, err := normalizedAlgorithm(cmd, cryptoDomain.OpGenerateKey)
	if err != nil {
		return err
	}

	usages := cryptoDomain.AllowedUsages(alg.ID())
	if len(usageNames) > 0 {
		if usages, err = cryptoDomain.ParseUsages(usageNames); err != nil {
			return err
		}
	}

	result, err := commandHandler.run(cmd.Context(), &cryptoDomain.Request{
		Operation:   cryptoDomain.OpGenerateKey,
		Algorithm:   alg,
		Extractable: true,
		Usages:      usages,
	})
	if err != nil {
		return err
	}

	keys := []*cryptoDomain.Key{result.Key()}
	if result.Key().Type() == cryptoDomain.KeyTypePrivate {
		public, err := result.Key().PublicKey()
		if err != nil {
			return err
		}
		keys = append(keys, public)
	}

	uniqueID := uuid.New()
	for _, key := range keys {
		keyFilePath, err := writeKeyFile(keyDir, uniqueID.String(), key, format)
		if err != nil {
			return err
		}
		commandHandler.logger.Info(fmt.Sprintf("%s %s key saved to %s", key.Algorithm().ID(), key.Type(), keyFilePath))
		fmt.Fprintln(cmd.OutOrStdout(), keyFilePath)
	}
	return nil
}

// writeKeyFile exports key into dir. The pem format stores private keys as
// pkcs8 and public keys as spki; secret keys are then written raw.
func writeKeyFile(dir, id string, key *cryptoDomain.Key, format string) (string, error) {
	var (
		data []byte
		ext  string
		err  error
	)

	switch {
	case format == "jwk":
		data, err = cryptography.ExportKey(key, cryptoDomain.FormatJWK)
		ext = "jwk"
	case format == "pem" && key.Type() == cryptoDomain.KeyTypePrivate:
		data, err = cryptography.ExportKey(key, cryptoDomain.FormatPKCS8)
		data = pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: data})
		ext = "pem"
	case format == "pem" && key.Type() == cryptoDomain.KeyTypePublic:
		data, err = cryptography.ExportKey(key, cryptoDomain.FormatSPKI)
		data = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: data})
		ext = "pem"
	case format == "pem" || format == "raw":
		data, err = cryptography.ExportKey(key, cryptoDomain.FormatRaw)
		ext = "bin"
	default:
		return "", fmt.Errorf("unsupported key file format %q", format)
	}
	if err != nil {
		return "", err
	}

	keyFilePath := filepath.Join(dir, fmt.Sprintf("%s-%s-key.%s", id, key.Type(), ext))
	if err := os.WriteFile(keyFilePath, data, 0600); err != nil {
		return "", err
	}
	return keyFilePath, nil
}

// ImportKeyCmd imports a key file and prints what the backend made of it
func (commandHandler *CommandHandler) ImportKeyCmd(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("key-file")
	format, _ := cmd.Flags().GetString("key-format")
	usageNames, _ := cmd.Flags().GetStringSlice("usages")

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	keyFormat, keyData, err := keyFileFormat(path, format, content)
	if err != nil {
		return err
	}

	var alg *cryptoDomain.Algorithm
	if name, _ := cmd.Flags().GetString("algorithm"); name != "" || cmd.Flags().Changed("algorithm-file") {
		if _, alg, err = normalizedAlgorithm(cmd, cryptoDomain.OpImportKey); err != nil {
			return err
		}
	}

	usages, err := cryptoDomain.ParseUsages(usageNames)
	if err != nil {
		return err
	}

	result, err := commandHandler.run(cmd.Context(), &cryptoDomain.Request{
		Operation:   cryptoDomain.OpImportKey,
		Algorithm:   alg,
		Format:      keyFormat,
		KeyData:     keyData,
		Extractable: true,
		Usages:      usages,
	})
	if err != nil {
		return err
	}

	key := result.Key()
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(keyDescription{
		Type:        string(key.Type()),
		Algorithm:   cryptoDomain.Describe(key.Algorithm()),
		Bits:        key.Material().Bits(),
		Extractable: key.Extractable(),
		Usages:      key.Usages().Names(),
	})
}

// InitKeyCommands registers generate-key and import-key
func InitKeyCommands(rootCmd *cobra.Command, handler *CommandHandler) {
	var generateKeyCmd = &cobra.Command{
		Use:   "generate-key",
		Short: "Generate a secret key or key pair",
		RunE:  handler.GenerateKeyCmd,
	}
	addAlgorithmFlags(generateKeyCmd)
	generateKeyCmd.Flags().String("key-dir", ".", "Directory to store the generated key files")
	generateKeyCmd.Flags().String("format", "jwk", "Key file format: jwk, pem (pkcs8/spki) or raw")
	generateKeyCmd.Flags().StringSlice("usages", nil, "Key usages; every usage the algorithm allows when empty")
	rootCmd.AddCommand(generateKeyCmd)

	var importKeyCmd = &cobra.Command{
		Use:   "import-key",
		Short: "Import a key file and describe it",
		Long: strings.TrimSpace(`
Import a key file and print its type, algorithm, size and usages.
The algorithm flags may be omitted for jwk files and for EC or Ed25519 pkcs8/spki files.`),
		RunE: handler.ImportKeyCmd,
	}
	addAlgorithmFlags(importKeyCmd)
	addKeyFileFlags(importKeyCmd)
	importKeyCmd.Flags().StringSlice("usages", nil, "Usages to import the key with")
	_ = importKeyCmd.MarkFlagRequired("usages")
	rootCmd.AddCommand(importKeyCmd)
}
