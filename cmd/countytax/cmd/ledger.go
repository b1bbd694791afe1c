package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ledgerCmd)
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger <detail-url>",
	Short: "Fetch the tax ledger for a property found via search.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		provider, err := resolveProvider(countyName)
		if err != nil {
			log.Fatal(err)
		}

		ledger, err := provider.FetchLedger(cmd.Context(), args[0])
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(ledger.Title)
		if ledger.StubNumber != "" {
			fmt.Println("Stub #:", ledger.StubNumber)
		}

		out := table.NewWriter()
		out.SetOutputMirror(os.Stdout)
		out.AppendHeader(table.Row{"Year", "Label", "Amount Paid", "Balance Due"})
		for _, period := range ledger.Periods {
			out.AppendRow(table.Row{
				period.Year,
				period.Label,
				period.AmountPaidDisplay,
				period.BalanceDueDisplay,
			})
		}
		out.AppendFooter(table.Row{
			ledger.Total.Year,
			ledger.Total.Label,
			ledger.Total.AmountPaidDisplay,
			ledger.Total.BalanceDueDisplay,
		})
		out.Render()
	},
}
