package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotfold/pkg/display"
)

// emit writes a command result: the report through the renderer the
// --format flag selects, or the raw result as JSON.
func emit(cmd *cobra.Command, rep display.Report, raw any) error {
	name, _ := cmd.Root().PersistentFlags().GetString("format")
	format, err := display.ParseFormat(name)
	if err != nil {
		return err
	}
	format = display.Resolve(format, os.Stdout)

	if format == display.FormatJSON {
		return display.WriteJSON(cmd.OutOrStdout(), raw)
	}

	fmt.Fprintln(cmd.OutOrStdout(), display.NewRenderer(format).Render(rep))
	return nil
}
