// Command uwctl is the operator CLI: it compiles the policy corpus into the
// structured rule registry, validates compiled registries, and previews
// execution plans.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"uwgate/internal/planner"
	"uwgate/internal/platform/config"
	"uwgate/internal/platform/logger"
	"uwgate/internal/policystore"
	"uwgate/internal/rules"
	"uwgate/internal/rules/compile"
	"uwgate/internal/rules/registry"
)

func main() {
	root := &cobra.Command{
		Use:           "uwctl",
		Short:         "Operator tooling for the underwriting gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(compileCmd(), validateCmd(), planCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func compileCmd() *cobra.Command {
	var policiesPath, outPath, model string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the policy corpus into a structured rule registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if policiesPath == "" {
				policiesPath = cfg.Rules.PoliciesPath
			}
			if outPath == "" {
				outPath = cfg.Rules.RegistryPath
			}
			if model == "" {
				model = cfg.OpenAI.Model
			}
			log := logger.New(cfg.Server.LogLevel)

			source, err := policystore.LoadFile(policiesPath)
			if err != nil {
				return err
			}
			extractor, err := compile.NewOpenAIExtractor(cfg.OpenAI.APIKey, model)
			if err != nil {
				return err
			}

			reg, err := compile.New(source, extractor, log).Compile(cmd.Context())
			if err != nil {
				return err
			}
			if err := registry.SaveFile(reg, outPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "compiled %d rules to %s\n", reg.Len(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&policiesPath, "policies", "", "policy corpus YAML (default from env)")
	cmd.Flags().StringVar(&outPath, "out", "", "output registry JSON (default from env)")
	cmd.Flags().StringVar(&model, "model", "", "extraction model (default from env)")
	return cmd
}

func validateCmd() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a compiled registry against the router tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadFile(rulesPath)
			if err != nil {
				return err
			}

			total := 0
			warnings := planner.ValidateRegistry(reg)
			for _, name := range reg.List() {
				for _, warning := range warnings[name] {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, warning)
					total++
				}
			}
			if total == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d rules valid, no warnings\n", reg.Len())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d rules valid, %d warnings\n", reg.Len(), total)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "./policies/structured_rules.json", "compiled registry JSON")
	return cmd
}

func planCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plan RULE[,RULE...]",
		Short: "Preview the agent execution plan for a set of review rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var active []rules.ReviewRule
			for _, arg := range args {
				for _, name := range strings.Split(arg, ",") {
					rule, err := rules.ParseReviewRule(strings.TrimSpace(name))
					if err != nil {
						return err
					}
					active = append(active, rule)
				}
			}

			plan, err := planner.Plan(active)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(plan, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
