package commands

import (
	"context"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MGTheTrain/crypto-dispatch/internal/app"
	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
	"github.com/MGTheTrain/crypto-dispatch/internal/infrastructure/cryptography"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/config"
	"github.com/MGTheTrain/crypto-dispatch/internal/pkg/logger"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func setupLogger() (logger.Logger, error) {
	settings := &config.LoggerSettings{
		LogLevel: config.LogLevelInfo,
		LogType:  config.LogTypeConsole,
	}

	if err := logger.InitLogger(settings); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loggerInstance, err := logger.GetLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to get logger instance: %w", err)
	}

	return loggerInstance, nil
}

// CommandHandler runs CLI commands through a dispatcher backed by the software backend.
type CommandHandler struct {
	dispatcher cryptoDomain.Dispatcher
	logger     logger.Logger
}

// NewCommandHandler initializes a CommandHandler with the console logger
func NewCommandHandler() (*CommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	backend, err := cryptography.NewSoftwareBackend(loggerInstance)
	if err != nil {
		return nil, fmt.Errorf("failed to create software backend: %w", err)
	}

	dispatcher, err := app.NewDispatcher(backend, loggerInstance)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	return &CommandHandler{
		dispatcher: dispatcher,
		logger:     loggerInstance,
	}, nil
}

func (commandHandler *CommandHandler) run(ctx context.Context, req *cryptoDomain.Request) (cryptoDomain.Result, error) {
	return app.Run(ctx, commandHandler.dispatcher, req)
}

// addAlgorithmFlags registers the flags that make up an algorithm spec.
func addAlgorithmFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("algorithm", "a", "", "Algorithm name, e.g. AES-GCM, SHA-256, ECDSA")
	cmd.Flags().String("algorithm-file", "", "YAML file holding the algorithm spec, instead of the flags below")
	cmd.Flags().String("hash", "", "Hash algorithm for HMAC, RSA and ECDSA")
	cmd.Flags().Int("length", 0, "Key length in bits, or counter length for AES-CTR")
	cmd.Flags().String("named-curve", "", "Curve for ECDSA keys (P-256, P-384, P-521)")
	cmd.Flags().Int("modulus-length", 0, "RSA modulus length in bits")
	cmd.Flags().String("iv", "", "Hex encoded IV or nonce")
	cmd.Flags().String("additional-data", "", "Hex encoded additional authenticated data")
	cmd.Flags().Int("tag-length", 0, "AES-GCM tag length in bits")
	cmd.Flags().String("counter", "", "Hex encoded AES-CTR counter block")
	cmd.Flags().Int("salt-length", 0, "RSA-PSS salt length in bytes")
	cmd.Flags().String("label", "", "Hex encoded RSA-OAEP label")
}

// algorithmSpec reads the spec from --algorithm-file or assembles it from the flags.
func algorithmSpec(cmd *cobra.Command) (*cryptoDomain.AlgorithmSpec, error) {
	flags := cmd.Flags()

	if path, _ := flags.GetString("algorithm-file"); path != "" {
		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, err
		}
		var spec cryptoDomain.AlgorithmSpec
		if err := yaml.Unmarshal(content, &spec); err != nil {
			return nil, fmt.Errorf("failed to parse algorithm file: %w", err)
		}
		return &spec, nil
	}

	spec := &cryptoDomain.AlgorithmSpec{}
	spec.Name, _ = flags.GetString("algorithm")
	spec.Hash, _ = flags.GetString("hash")
	spec.Length, _ = flags.GetInt("length")
	spec.NamedCurve, _ = flags.GetString("named-curve")
	spec.ModulusLength, _ = flags.GetInt("modulus-length")
	spec.TagLength, _ = flags.GetInt("tag-length")
	spec.SaltLength, _ = flags.GetInt("salt-length")

	hexFlags := []struct {
		name string
		dst  *[]byte
	}{
		{"iv", &spec.IV},
		{"additional-data", &spec.AdditionalData},
		{"counter", &spec.Counter},
		{"label", &spec.Label},
	}
	for _, f := range hexFlags {
		value, _ := flags.GetString(f.name)
		if value == "" {
			continue
		}
		decoded, err := hex.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s flag: %w", f.name, err)
		}
		*f.dst = decoded
	}

	if spec.Name == "" {
		return nil, fmt.Errorf("either --algorithm or --algorithm-file is required")
	}
	return spec, nil
}

// normalizedAlgorithm resolves the algorithm flags for op.
func normalizedAlgorithm(cmd *cobra.Command, op cryptoDomain.Operation) (*cryptoDomain.AlgorithmSpec, *cryptoDomain.Algorithm, error) {
	spec, err := algorithmSpec(cmd)
	if err != nil {
		return nil, nil, err
	}
	alg, err := spec.Normalize(op)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid algorithm: %w", err)
	}
	return spec, alg, nil
}

// keyFileFormat works out the format of a key file and returns the bytes to import.
// PEM files are unwrapped to their DER payload.
func keyFileFormat(path, format string, content []byte) (cryptoDomain.KeyFormat, []byte, error) {
	if format != "" {
		f, err := cryptoDomain.ParseKeyFormat(format)
		return f, content, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".jwk", ".json":
		return cryptoDomain.FormatJWK, content, nil
	case ".pem":
		block, _ := pem.Decode(content)
		if block == nil {
			return "", nil, fmt.Errorf("%s holds no PEM block", path)
		}
		switch block.Type {
		case "PRIVATE KEY":
			return cryptoDomain.FormatPKCS8, block.Bytes, nil
		case "PUBLIC KEY":
			return cryptoDomain.FormatSPKI, block.Bytes, nil
		default:
			return "", nil, fmt.Errorf("unsupported PEM block type %q", block.Type)
		}
	default:
		return cryptoDomain.FormatRaw, content, nil
	}
}

// loadKey imports the key file for use under spec by op.
func (commandHandler *CommandHandler) loadKey(ctx context.Context, cmd *cobra.Command, spec *cryptoDomain.AlgorithmSpec, op cryptoDomain.Operation) (*cryptoDomain.Key, error) {
	path, _ := cmd.Flags().GetString("key-file")
	format, _ := cmd.Flags().GetString("key-format")

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	keyFormat, keyData, err := keyFileFormat(path, format, content)
	if err != nil {
		return nil, err
	}

	id, err := cryptoDomain.ParseAlgorithmID(spec.Name)
	if err != nil {
		return nil, err
	}

	// jwk, pkcs8 and spki files name their own algorithm when the flags leave it open
	importSpec := &cryptoDomain.AlgorithmSpec{Name: spec.Name, Hash: spec.Hash, NamedCurve: spec.NamedCurve}
	importAlg, err := importSpec.Normalize(cryptoDomain.OpImportKey)
	if err != nil {
		if keyFormat == cryptoDomain.FormatRaw {
			return nil, fmt.Errorf("invalid key algorithm: %w", err)
		}
		importAlg = nil
	}

	result, err := commandHandler.run(ctx, &cryptoDomain.Request{
		Operation:   cryptoDomain.OpImportKey,
		Algorithm:   importAlg,
		Format:      keyFormat,
		KeyData:     keyData,
		Extractable: false,
		Usages:      cryptoDomain.RequiredUsage(op, id),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load key %s: %w", path, err)
	}
	return result.Key(), nil
}

func addKeyFileFlags(cmd *cobra.Command) {
	cmd.Flags().String("key-file", "", "Path to the key file (.jwk, .pem or raw bytes)")
	cmd.Flags().String("key-format", "", "Key file format (raw, pkcs8, spki, jwk); inferred from the extension when empty")
	_ = cmd.MarkFlagRequired("key-file")
}

func writeOutput(path string, data []byte) error {
	return os.WriteFile(filepath.Clean(path), data, 0600)
}
