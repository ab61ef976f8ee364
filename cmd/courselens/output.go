package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML encodes v as YAML to the command's stdout.
func writeYAML(cmd *cobra.Command, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// addOutputFlags registers the shared output-mode flags.
func addOutputFlags(cmd *cobra.Command, jsonOut, yamlOut *bool) {
	cmd.Flags().BoolVar(jsonOut, "json", false, "Emit JSON instead of tables")
	cmd.Flags().BoolVar(yamlOut, "yaml", false, "Emit YAML instead of tables")
}
