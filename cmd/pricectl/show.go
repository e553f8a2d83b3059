package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/spf13/cobra"
)

// showContextWidth is how much of each context fits in a table row.
const showContextWidth = 60

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the filtered and sorted prices as a table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := loadStore(cmd.Context())
		if err != nil {
			return err
		}

		f := cmd.Flags()
		q, _ := f.GetString("q")
		key, _ := f.GetString("sort")
		dir, _ := f.GetString("dir")

		records := core.Controls{
			Query:     q,
			Key:       core.SortKey(key),
			Direction: core.Direction(dir),
		}.Apply(store)

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, core.EmptyResultsText)
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PRICE\tCURRENCY\tCONTEXT\tRAW")
		for _, r := range records {
			currency := r.Currency()
			if !r.HasCurrency() {
				currency = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				core.FormatPrice(r.Value(), r.Currency()),
				currency,
				core.Truncate(r.Context(), showContextWidth),
				r.Raw(),
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d of %d records\n", len(records), store.Len())
		return nil
	},
}

func init() {
	f := showCmd.Flags()
	f.String("q", "", "case-insensitive filter on context, currency and value")
	f.String("sort", string(core.SortByValue), "sort key: value or currency")
	f.String("dir", string(core.Ascending), "sort direction: asc or desc")
	rootCmd.AddCommand(showCmd)
}
