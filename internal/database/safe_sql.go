package database

import "fmt"

// AllowedTables are the only table names that may be formatted into SQL.
// Everything else goes through placeholders.
var AllowedTables = map[string]bool{
	"fetch_runs":      true,
	"experiments":     true,
	"series":          true,
	"sequencing_runs": true,
}

// childTables hold rows keyed by experiment accession, children first.
var childTables = []string{"sequencing_runs", "series"}

// ErrInvalidTableName is returned for a table outside AllowedTables.
var ErrInvalidTableName = fmt.Errorf("invalid table name")

// ValidateTableName rejects any name not in AllowedTables.
func ValidateTableName(table string) error {
	if !AllowedTables[table] {
		return fmt.Errorf("%w: %q", ErrInvalidTableName, table)
	}
	return nil
}

// SafeTableName returns table unchanged once it is known to be allowed.
func SafeTableName(table string) (string, error) {
	if err := ValidateTableName(table); err != nil {
		return "", err
	}
	return table, nil
}
