package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lexai/backend/llm"
	"github.com/lexai/backend/model"
)

func newAuditCmd(configPath *string, newProvider llm.Factory) *cobra.Command {
	var policyPath, contractPath string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit one contract against a policy and print the result",
		Long: "Runs a single audit locally and prints the JSON result. " +
			"Exits with status 2 when the model rejects the documents as unrelated.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(cmd, newProvider, *configPath, policyPath, contractPath)
		},
	}

	cmd.Flags().StringVarP(&policyPath, "policy", "p", "", "Policy PDF")
	cmd.Flags().StringVarP(&contractPath, "contract", "k", "", "Contract PDF")
	_ = cmd.MarkFlagRequired("policy")
	_ = cmd.MarkFlagRequired("contract")

	return cmd
}

func runAudit(cmd *cobra.Command, newProvider llm.Factory, configPath, policyPath, contractPath string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	initLogger(cfg, cmd.ErrOrStderr())

	policy, err := os.ReadFile(policyPath)
	if err != nil {
		return fmt.Errorf("reading policy: %w", err)
	}
	contract, err := os.ReadFile(contractPath)
	if err != nil {
		return fmt.Errorf("reading contract: %w", err)
	}

	provider, auditor, err := buildAuditor(ctx, cfg, newProvider)
	if err != nil {
		return err
	}
	defer provider.Close()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	resp, err := auditor.Audit(ctx, policy, contract)
	var rejection *model.ValidationError
	if errors.As(err, &rejection) {
		if err := enc.Encode(rejection); err != nil {
			return err
		}
		return &exitError{code: 2}
	}
	if err != nil {
		return fmt.Errorf("auditing: %w", err)
	}

	return enc.Encode(resp)
}
