package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the full dataset as " + core.ExportFilename,
	Long:  "Writes {\"prices\": [...]} with every record, pretty-printed. Use --out - for stdout.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := loadStore(cmd.Context())
		if err != nil {
			return err
		}

		file, err := core.Export(store)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "-" {
			_, err := file.WriteTo(cmd.OutOrStdout())
			return err
		}
		if out == "" {
			out = file.Filename
		}
		if err := os.WriteFile(out, file.Body, 0o644); err != nil {
			return eris.Wrapf(err, "write export %s", out)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", store.Len(), out)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", core.ExportFilename, "output path, or - for stdout")
	rootCmd.AddCommand(exportCmd)
}
