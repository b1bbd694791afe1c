package cmd

import (
	"fmt"
	"log"
	"os"

	"countytax-backend/lib/scrapers/county"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var addressNumber string
var addressSuffix string
var addressUnit string
var pageSize int

func init() {
	searchAddressCmd.Flags().StringVar(&addressNumber, "number", "", "street number")
	searchAddressCmd.Flags().StringVar(&addressSuffix, "suffix", "", "street suffix (e.g. RD, DR)")
	searchAddressCmd.Flags().StringVar(&addressUnit, "unit", "", "unit / apartment")
	searchAddressCmd.Flags().IntVar(&pageSize, "page-size", 0, "results per page")

	searchCmd.AddCommand(searchAddressCmd)
	searchCmd.AddCommand(searchParcelCmd)
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search a county portal for property records.",
}

var searchAddressCmd = &cobra.Command{
	Use:   "address <street name>",
	Short: "Search properties by street address.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		provider, err := resolveProvider(countyName)
		if err != nil {
			log.Fatal(err)
		}

		records, err := provider.SearchAddress(cmd.Context(), county.AddressQuery{
			Number:   addressNumber,
			Street:   args[0],
			Suffix:   addressSuffix,
			Unit:     addressUnit,
			PageSize: pageSize,
		})
		if err != nil {
			log.Fatal(err)
		}
		renderRecords(records)
	},
}

var searchParcelCmd = &cobra.Command{
	Use:   "parcel <id>",
	Short: "Search properties by parcel/map number.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		provider, err := resolveProvider(countyName)
		if err != nil {
			log.Fatal(err)
		}

		records, err := provider.SearchParcel(cmd.Context(), args[0])
		if err != nil {
			log.Fatal(err)
		}
		renderRecords(records)
	},
}

func renderRecords(records []county.PropertyRecord) {
	if len(records) == 0 {
		fmt.Println("No matching properties found.")
		return
	}

	out := table.NewWriter()
	out.SetOutputMirror(os.Stdout)

	header := table.Row{"#"}
	for _, column := range records[0].Columns {
		header = append(header, column)
	}
	header = append(header, "Detail URL")
	out.AppendHeader(header)

	for i, record := range records {
		row := table.Row{i + 1}
		for _, column := range records[0].Columns {
			row = append(row, record.Get(column))
		}
		row = append(row, record.DetailURL)
		out.AppendRow(row)
	}
	out.Render()
}
