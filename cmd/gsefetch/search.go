package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nishad/gsefetch/internal/eutils"
)

var searchCmd = &cobra.Command{
	Use:   "search <db> <term>",
	Short: "Run a raw esearch and print the matching uids",
	Long: `Run esearch against the gds or sra database and print the uids it
returns, one per line. Useful for checking what the pipeline will see.`,
	Example: `  gsefetch search gds "GSE89408 AND gse[ETYP]"
  gsefetch search sra SRP092402 --format json`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

var searchFormat string

func init() {
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "text", "Output format (text|json)")
	searchCmd.Flags().String("api-key", "", "NCBI API key")
	searchCmd.Flags().Int("retmax", 0, "Maximum uids to return")
}

func parseDatabase(s string) (eutils.Database, error) {
	switch db := eutils.Database(strings.ToLower(s)); db {
	case eutils.GDS, eutils.SRA:
		return db, nil
	default:
		return "", fmt.Errorf("unsupported database %q (want gds or sra)", s)
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	db, err := parseDatabase(args[0])
	if err != nil {
		return err
	}

	res := newClient(cfg, log).Search(context.Background(), db, args[1])
	if res.Failed() {
		return res.Err
	}

	switch searchFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"db":     db,
			"term":   args[1],
			"status": res.Status.String(),
			"ids":    res.IDs,
		})
	case "text":
		if len(res.IDs) == 0 {
			printInfo("No uids found for %q", args[1])
			return nil
		}
		for _, id := range res.IDs {
			fmt.Println(id)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", searchFormat)
	}
}
