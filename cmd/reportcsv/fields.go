package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/dgallion1/reportcsv/internal/extract"
	"github.com/spf13/cobra"
)

var fieldsJSON bool

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the CSV columns in order",
	Long: `Fields lists the output columns in order. Columns marked with * are
trigger fields: an object carrying any of them becomes a row.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := printFields(os.Stdout, fieldsJSON); err != nil {
			fatal("Error encoding fields", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
	fieldsCmd.Flags().BoolVar(&fieldsJSON, "json", false, "Output in JSON format")
}

func printFields(w io.Writer, asJSON bool) error {
	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string][]string{
			"fields":         extract.Fields(),
			"trigger_fields": extract.TriggerFields(),
		})
	}

	triggers := extract.TriggerFields()
	for i, f := range extract.Fields() {
		mark := " "
		if slices.Contains(triggers, f) {
			mark = "*"
		}
		if _, err := fmt.Fprintf(w, "%2d %s %s\n", i+1, mark, f); err != nil {
			return err
		}
	}
	return nil
}
