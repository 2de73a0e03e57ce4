package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/run"
)

// Run executes the check command.
func (c *CheckCmd) Run(deps *Dependencies) error {
	schema, err := loadSchema(c.Schema)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", harvest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Schema OK: %d fields (%d required), hash %s\n\n",
		len(schema.Fields), len(schema.Required()), run.SchemaHash(schema))

	width := 0
	for _, f := range schema.Fields {
		if len(f.Name) > width {
			width = len(f.Name)
		}
	}
	for _, f := range schema.Fields {
		required := ""
		if f.Required {
			required = ", required"
		}
		fmt.Fprintf(deps.Stdout, "  %-*s  %s%s\n", width, f.Name, f.Type, required)
		if f.Hint != "" {
			fmt.Fprintf(deps.Stdout, "  %-*s  hint: %s\n", width, "", f.Hint)
		}
		if f.Format != "" {
			fmt.Fprintf(deps.Stdout, "  %-*s  format: %s\n", width, "", f.Format)
		}
	}
	return nil
}

// loadSchema reads and validates a schema definition file.
func loadSchema(path string) (*harvest.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "reading schema: %v", err)
	}
	return harvest.ParseSchema(data)
}
