package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cmmoran/beanres/pkg/action/index"
)

func init() {
	rootCmd.AddCommand(NewIndexCommand())
}

func NewIndexCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "index",
		Short: "build the java type index cache",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			res, err := index.Generate(c.Context(), viper.GetString(keyProject), viper.GetString(keyIndexCache), force)
			if err != nil {
				return err
			}
			return writeJSON(c, res)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "rebuild even when the cache is up to date")
	return cmd
}
