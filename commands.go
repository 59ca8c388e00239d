package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pa-inspections/inspections-engine/pkg/config"
	"github.com/pa-inspections/inspections-engine/pkg/logging"
)

const defaultOutput = "inspections.xlsx"

func (a *app) runCmd() *cobra.Command {
	var (
		output string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "run [raw-export.xlsx]",
		Short: "Run every stage on a raw export",
		Long: `Cleans the raw export, adds violation details, upserts and joins categories,
labels new establishments and writes the working table.

Stage failures after cleaning are logged and the table is still written;
use --strict to exit non-zero when any stage failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := p.Run(cmd.Context(), args[0], output)
			if err != nil && (strict || len(summary.Failed) == 0) {
				return err
			}
			if err != nil {
				a.logger.Warn("Run finished with failed stages",
					zap.Strings("stages", summary.Failed),
					zap.String("error", logging.SanitizeError(err)))
			}
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(summary)
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", defaultOutput, "working table to write")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any stage failed")
	return cmd
}

func (a *app) cleanCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "clean [raw-export.xlsx]",
		Short: "Normalize a raw export into a working table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := p.CleanFile(cmd.Context(), args[0], output); err != nil {
				return err
			}
			return p.Flush(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", defaultOutput, "working table to write")
	return cmd
}

func (a *app) violationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "violations [table.xlsx]",
		Short: "Add violation details from the food code lookup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := p.ResolveFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			return p.Flush(cmd.Context())
		},
	}
}

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Reconcile the working table with the category store",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "upsert [table.xlsx]",
		Short: "Add new establishments to the category store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := p.UpsertFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			return p.Flush(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "join [table.xlsx]",
		Short: "Write category labels into the working table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := p.JoinFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			return p.Flush(cmd.Context())
		},
	})
	return cmd
}

func (a *app) labelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "label [table.xlsx]",
		Short: "Label unlabeled establishments with the LLM and join the labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			res, err := p.LabelFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := p.Flush(cmd.Context()); err != nil {
				return err
			}
			return yaml.NewEncoder(cmd.OutOrStdout()).Encode(res)
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(newConfigView(a.cfg))
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// configView adds the masked secrets, which the config file never carries.
type configView struct {
	config.Config `yaml:",inline"`
	Version       string            `yaml:"version"`
	Secrets       map[string]string `yaml:"secrets"`
}

func newConfigView(cfg *config.Config) configView {
	r := cfg.Redacted()
	return configView{
		Config:  *r,
		Version: r.Version,
		Secrets: map[string]string{
			"AWS_ACCESS_KEY_ID":     r.Storage.AccessKeyID,
			"AWS_SECRET_ACCESS_KEY": r.Storage.SecretAccessKey,
			"OPENAI_API_KEY":        r.LLM.OpenAIAPIKey,
			"ANTHROPIC_API_KEY":     r.LLM.AnthropicAPIKey,
		},
	}
}
