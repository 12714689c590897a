package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	identityDomain "github.com/innwise/fieldvault/internal/identity/domain"
	identityUseCase "github.com/innwise/fieldvault/internal/identity/usecase"
)

// RunCreateServiceAccount provisions a machine credential for back-office
// integrations. Outputs the account ID and the one-time plaintext token in
// either text or JSON format. Memberships are granted separately with
// create-membership.
//
// Requirements: Database must be migrated and accessible.
func RunCreateServiceAccount(
	ctx context.Context,
	identityUseCase identityUseCase.IdentityUseCase,
	logger *slog.Logger,
	writer io.Writer,
	name string,
	format string,
) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}

	logger.Info("creating service account", slog.String("name", name))

	output, err := identityUseCase.CreateServiceAccount(ctx, &identityDomain.CreateServiceAccountInput{
		Name: name,
	})
	if err != nil {
		return fmt.Errorf("failed to create service account: %w", err)
	}

	// Output result based on format
	if format == "json" {
		if err := outputServiceAccountJSON(writer, output); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputServiceAccountText(writer, output)
	}

	logger.Info("service account created",
		slog.String("account_id", output.ID.String()),
		slog.String("name", name),
	)

	return nil
}

// outputServiceAccountText outputs the result in human-readable text format.
func outputServiceAccountText(writer io.Writer, output *identityDomain.CreateServiceAccountOutput) {
	_, _ = fmt.Fprintln(writer, "\nService account created successfully!")
	_, _ = fmt.Fprintf(writer, "Account ID: %s\n", output.ID.String())
	_, _ = fmt.Fprintf(writer, "Token: %s\n", output.PlainToken)
	_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The token is shown only once. Store it securely.")
}

// outputServiceAccountJSON outputs the result in JSON format for machine consumption.
func outputServiceAccountJSON(writer io.Writer, output *identityDomain.CreateServiceAccountOutput) error {
	result := map[string]string{
		"account_id": output.ID.String(),
		"token":      output.PlainToken,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
