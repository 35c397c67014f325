package options

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/hubz/pkg/printers"
)

// OutputOptions selects text or structured output.
type OutputOptions struct {
	Output string
	IDs    bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().StringVarP(&po.Output, "output", "o", string(printers.FormatText),
		"Output format. One of 'text', 'json' or 'yaml'.")
	cmd.Flags().BoolVar(&po.IDs, "ids", false,
		"Show item identifiers in text output.")
}

func (o *OutputOptions) Format() (printers.Format, error) {
	return printers.ParseFormat(o.Output)
}

// Structured reports whether the output is JSON or YAML.
func (o *OutputOptions) Structured() bool {
	f, err := o.Format()
	return err == nil && f != printers.FormatText
}

// HandleError prints err as a document when the output is structured, so
// scripts always get parseable output.
func (o *OutputOptions) HandleError(err error) error {
	if err == nil || !o.Structured() {
		return err
	}
	f, _ := o.Format()
	if encErr := printers.Encode(color.Output, f, map[string]string{"error": err.Error()}); encErr != nil {
		return fmt.Errorf("%w (encoding error: %v)", err, encErr)
	}
	return nil
}
