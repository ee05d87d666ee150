package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cmmoran/beanres/pkg/beans"
)

func init() {
	rootCmd.AddCommand(NewNamingCommand())
}

type namingResult struct {
	Input     string `json:"input"`
	Property  string `json:"property"`
	Attribute string `json:"attribute"`
	Valid     bool   `json:"valid"`
}

func NewNamingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "naming <name>...",
		Short: "convert between attribute and property names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			out := make([]namingResult, 0, len(args))
			for _, name := range args {
				out = append(out, namingResult{
					Input:     name,
					Property:  beans.AttributeNameToPropertyName(name),
					Attribute: beans.PropertyNameToAttributeName(name),
					Valid:     beans.IsValidPropertyName(name),
				})
			}
			return writeJSON(c, out)
		},
	}
}
