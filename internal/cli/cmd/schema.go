package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/bnema/tabsession/internal/config"
	"github.com/bnema/tabsession/internal/domain/entity"
)

var schemaConfig bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of slot metadata files",
	Long: `Print the JSON schema describing the metadata file written for each slot.
With --config, print the schema of the configuration file instead.`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolVar(&schemaConfig, "config", false, "print the configuration schema")
}

func runSchema(_ *cobra.Command, _ []string) error {
	var (
		data []byte
		err  error
	)
	if schemaConfig {
		data, err = config.Schema()
	} else {
		data, err = MetadataSchema()
	}
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// MetadataSchema returns the indented JSON schema of entity.Metadata.
func MetadataSchema() ([]byte, error) {
	r := &jsonschema.Reflector{DoNotReference: true}
	s := r.Reflect(&entity.Metadata{})
	s.ID = "https://github.com/bnema/tabsession/metadata.schema.json"
	s.Title = "tabsession slot metadata"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal metadata schema: %w", err)
	}
	return data, nil
}
