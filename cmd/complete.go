package cmd

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(NewCompleteCommand())
}

func NewCompleteCommand() *cobra.Command {
	var (
		required     []string
		bean         string
		property     string
		propertiesOf string
	)
	cmd := &cobra.Command{
		Use:   "complete <unit> <prefix>",
		Short: "propose bean references or property names",
		Long: "Propose bean ids visible from unit that start with prefix, ranked against the required types.\n" +
			"With --bean and --property the required types are those the property accepts.\n" +
			"With --properties-of the prefix is a property path completed on that bean.",
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			unit, prefix := args[0], args[1]
			w, err := openWorkspace(c.Context())
			if err != nil {
				return err
			}
			e := w.Engine()

			if propertiesOf != "" {
				decl, err := lookup(e, unit, propertiesOf)
				if err != nil {
					return err
				}
				types, err := e.CollectReachableTypes(decl)
				if err != nil {
					return err
				}
				proposals, err := e.CompletePropertyNames(prefix, types)
				if err != nil {
					return err
				}
				return writeJSON(c, proposals)
			}

			want := append([]string(nil), required...)
			if bean != "" && property != "" {
				decl, err := lookup(e, unit, bean)
				if err != nil {
					return err
				}
				fromProperty, err := e.RequiredTypesForProperty(decl, property)
				if err != nil {
					return err
				}
				want = append(want, fromProperty...)
			}
			proposals, err := e.Complete(unit, prefix, want)
			if err != nil {
				return err
			}
			return writeJSON(c, proposals)
		},
	}
	cmd.Flags().StringSliceVarP(&required, "required-type", "t", nil, "type a proposal should be assignable to")
	cmd.Flags().StringVar(&bean, "bean", "", "bean owning the property being completed")
	cmd.Flags().StringVar(&property, "property", "", "property path whose setter determines the required types")
	cmd.Flags().StringVar(&propertiesOf, "properties-of", "", "complete property names of this bean instead of bean ids")
	return cmd
}
