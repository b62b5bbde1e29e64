package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/larriantoniy/wa_gateway/internal/config"
	"github.com/larriantoniy/wa_gateway/internal/domain"
)

var renderSet []string

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the message template catalog",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List template ids, including YAML overrides",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		renderer, err := buildRenderer(cfg)
		if err != nil {
			return err
		}
		for _, id := range renderer.Registry().IDs() {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var templatesRenderCmd = &cobra.Command{
	Use:   "render <id>",
	Short: "Render a template with --set key=value pairs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := parseSet(renderSet)
		if err != nil {
			return err
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		renderer, err := buildRenderer(cfg)
		if err != nil {
			return err
		}
		text, err := renderer.RenderRequest(domain.RenderRequest{TemplateID: args[0], Data: data})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	templatesRenderCmd.Flags().StringArrayVar(&renderSet, "set", nil, "placeholder value as key=value, repeatable")
	templatesCmd.AddCommand(templatesListCmd, templatesRenderCmd)
	rootCmd.AddCommand(templatesCmd)
}

func parseSet(pairs []string) (map[string]any, error) {
	data := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", p)
		}
		data[k] = v
	}
	return data, nil
}
