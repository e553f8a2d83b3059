package main

import (
	"fmt"
	"net/http"

	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Email the full dataset through the report service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f := cmd.Flags()
		to, _ := f.GetString("to")
		subject, _ := f.GetString("subject")

		store, err := loadStore(cmd.Context())
		if err != nil {
			return err
		}

		endpoint := cfg.Report.Endpoint
		if f.Changed("endpoint") {
			endpoint, _ = f.GetString("endpoint")
		}
		reporter := core.NewReporter(store, core.ReporterOptions{
			Client:         &http.Client{Timeout: cfg.Report.Timeout},
			Endpoint:       endpoint,
			DefaultSubject: cfg.Report.DefaultSubject,
		})

		out := reporter.Send(cmd.Context(), to, subject)
		if !out.OK {
			fmt.Fprintln(cmd.ErrOrStderr(), out.Message)
			return out.Err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", out.Message, out.ReportID)
		return nil
	},
}

func init() {
	f := reportCmd.Flags()
	f.String("to", "", "recipient address")
	f.String("subject", "", "subject line (default from REPORT_DEFAULT_SUBJECT)")
	f.String("endpoint", "", "email service URL (overrides REPORT_ENDPOINT)")
	rootCmd.AddCommand(reportCmd)
}
