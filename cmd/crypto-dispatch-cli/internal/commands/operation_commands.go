package commands

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"

	"github.com/spf13/cobra"
)

// DigestCmd hashes a file and prints the hex digest, or writes the raw digest to --output-file
func (commandHandler *CommandHandler) DigestCmd(cmd *cobra.Command, _ []string) error {
	inputFilePath, _ := cmd.Flags().GetString("input-file")
	outputFilePath, _ := cmd.Flags().GetString("output-file")

	_, alg, err := normalizedAlgorithm(cmd, cryptoDomain.OpDigest)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Clean(inputFilePath))
	if err != nil {
		return err
	}

	result, err := commandHandler.run(cmd.Context(), &cryptoDomain.Request{
		Operation: cryptoDomain.OpDigest,
		Algorithm: alg,
		Data:      data,
	})
	if err != nil {
		return err
	}

	if outputFilePath == "" {
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(result.Buffer()))
		return nil
	}
	if err := writeOutput(outputFilePath, result.Buffer()); err != nil {
		return err
	}
	commandHandler.logger.Info("Digest saved to ", outputFilePath)
	return nil
}

// EncryptCmd encrypts a file with the key in --key-file
func (commandHandler *CommandHandler) EncryptCmd(cmd *cobra.Command, _ []string) error {
	return commandHandler.transform(cmd, cryptoDomain.OpEncrypt, "Encrypted data saved to ")
}

// DecryptCmd decrypts a file with the key in --key-file
func (commandHandler *CommandHandler) DecryptCmd(cmd *cobra.Command, _ []string) error {
	return commandHandler.transform(cmd, cryptoDomain.OpDecrypt, "Decrypted data saved to ")
}

// SignCmd signs a file with the key in --key-file and writes the signature to --output-file
func (commandHandler *CommandHandler) SignCmd(cmd *cobra.Command, _ []string) error {
	return commandHandler.transform(cmd, cryptoDomain.OpSign, "Signature saved to ")
}

// transform runs a buffer producing operation from --input-file to --output-file.
func (commandHandler *CommandHandler) transform(cmd *cobra.Command, op cryptoDomain.Operation, done string) error {
	inputFilePath, _ := cmd.Flags().GetString("input-file")
	outputFilePath, _ := cmd.Flags().GetString("output-file")

	spec, alg, err := normalizedAlgorithm(cmd, op)
	if err != nil {
		return err
	}

	key, err := commandHandler.loadKey(cmd.Context(), cmd, spec, op)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Clean(inputFilePath))
	if err != nil {
		return err
	}

	result, err := commandHandler.run(cmd.Context(), &cryptoDomain.Request{
		Operation: op,
		Algorithm: alg,
		Key:       key,
		Data:      data,
	})
	if err != nil {
		return err
	}

	if err := writeOutput(outputFilePath, result.Buffer()); err != nil {
		return err
	}
	commandHandler.logger.Info(done, outputFilePath)
	return nil
}

// VerifyCmd checks the signature in --signature-file over a file and prints true or false
func (commandHandler *CommandHandler) VerifyCmd(cmd *cobra.Command, _ []string) error {
	inputFilePath, _ := cmd.Flags().GetString("input-file")
	signatureFilePath, _ := cmd.Flags().GetString("signature-file")

	spec, alg, err := normalizedAlgorithm(cmd, cryptoDomain.OpVerify)
	if err != nil {
		return err
	}

	key, err := commandHandler.loadKey(cmd.Context(), cmd, spec, cryptoDomain.OpVerify)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Clean(inputFilePath))
	if err != nil {
		return err
	}
	signature, err := os.ReadFile(filepath.Clean(signatureFilePath))
	if err != nil {
		return err
	}

	result, err := commandHandler.run(cmd.Context(), &cryptoDomain.Request{
		Operation: cryptoDomain.OpVerify,
		Algorithm: alg,
		Key:       key,
		Signature: signature,
		Data:      data,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Boolean())
	return nil
}

// InitOperationCommands registers digest, encrypt, decrypt, sign and verify
func InitOperationCommands(rootCmd *cobra.Command, handler *CommandHandler) {
	var digestCmd = &cobra.Command{
		Use:   "digest",
		Short: "Hash a file",
		RunE:  handler.DigestCmd,
	}
	addAlgorithmFlags(digestCmd)
	digestCmd.Flags().String("input-file", "", "Path to the file to hash")
	digestCmd.Flags().String("output-file", "", "Path to write the raw digest to; printed as hex when empty")
	_ = digestCmd.MarkFlagRequired("input-file")
	rootCmd.AddCommand(digestCmd)

	for _, c := range []struct {
		use, short, input, output string
		run                       func(*cobra.Command, []string) error
	}{
		{"encrypt", "Encrypt a file", "Path to input file that needs to be encrypted", "Path to encrypted output file", handler.EncryptCmd},
		{"decrypt", "Decrypt a file", "Input encrypted file path", "Path to decrypted output file", handler.DecryptCmd},
		{"sign", "Sign a file", "Path to the file to sign", "Path to the signature output file", handler.SignCmd},
	} {
		cmd := &cobra.Command{
			Use:   c.use,
			Short: c.short,
			RunE:  c.run,
		}
		addAlgorithmFlags(cmd)
		addKeyFileFlags(cmd)
		cmd.Flags().String("input-file", "", c.input)
		cmd.Flags().String("output-file", "", c.output)
		_ = cmd.MarkFlagRequired("input-file")
		_ = cmd.MarkFlagRequired("output-file")
		rootCmd.AddCommand(cmd)
	}

	var verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify the signature of a file",
		RunE:  handler.VerifyCmd,
	}
	addAlgorithmFlags(verifyCmd)
	addKeyFileFlags(verifyCmd)
	verifyCmd.Flags().String("input-file", "", "Path to the signed file")
	verifyCmd.Flags().String("signature-file", "", "Path to the signature file")
	_ = verifyCmd.MarkFlagRequired("input-file")
	_ = verifyCmd.MarkFlagRequired("signature-file")
	rootCmd.AddCommand(verifyCmd)
}
