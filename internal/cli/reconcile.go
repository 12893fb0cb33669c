package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/storyhub/internal/categories"
	"github.com/mrlokans/storyhub/internal/entities"
)

// ReconcileCommand prints the reconciled form of a raw category list.
type ReconcileCommand struct {
	File string `long:"file" short:"f" required:"true" description:"JSON file holding an array of {type_id, type_name, parent_type_id}"`

	out io.Writer
}

func (cmd *ReconcileCommand) Execute(args []string) error {
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", cmd.File, err)
	}

	var input []entities.Category
	if err := json.Unmarshal(data, &input); err != nil {
		return fmt.Errorf("failed to parse %s: %w", cmd.File, err)
	}

	result := categories.Reconcile(input, categories.DefaultTaxonomy())

	enc := json.NewEncoder(cmd.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(result)
}
