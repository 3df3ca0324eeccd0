// Package encode writes auxiliary, non-wire-contract output: batch
// quality reports in human- or machine-readable form. Record data itself
// (BFA/BFM) is written exclusively by the writer package's Parquet
// encoder -- this package never touches the wire schema.
package encode

import (
	"encoding/json"
	"os"
)

// WriteJSONIndent marshals v as indented JSON to the file at path,
// creating or truncating it.
func WriteJSONIndent(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
