package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/DanielPopoola/labresult-gateway/internal/config"
	"github.com/DanielPopoola/labresult-gateway/internal/core/signature"
	"github.com/spf13/cobra"
)

func signWebhookCmd() *cobra.Command {
	var (
		secret string
		embed  bool
	)

	cmd := &cobra.Command{
		Use:   "sign-webhook [file]",
		Short: "Sign a gateway callback payload",
		Long:  "Computes the HMAC-SHA512 signature of a JSON payload. Use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv(config.EnvPrefix + "GATEWAY__SECRET_KEY")
			}
			if secret == "" {
				return errors.New("no secret key: pass --secret or set " + config.EnvPrefix + "GATEWAY__SECRET_KEY")
			}

			body, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			payload, err := signature.Decode(body)
			if err != nil {
				return fmt.Errorf("parse payload: %w", err)
			}
			sig, err := signature.Sign(payload, secret)
			if err != nil {
				return err
			}

			if !embed {
				fmt.Fprintln(cmd.OutOrStdout(), sig)
				return nil
			}

			payload[signature.Field] = sig
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(payload)
		},
	}

	cmd.Flags().StringVarP(&secret, "secret", "s", "", "Gateway secret key")
	cmd.Flags().BoolVarP(&embed, "embed", "e", false, "Print the payload with the signature embedded")

	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
