package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the active hazard categories and buffer distances",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tBUFFER (M)\tRULES\tDESCRIPTION")
		for _, c := range reg.Categories {
			var rules []string
			for _, m := range c.Matchers {
				if m.Any {
					rules = append(rules, m.Key+"=*")
					continue
				}
				rules = append(rules, m.Key+"="+strings.Join(m.Values, "|"))
			}
			fmt.Fprintf(w, "%s\t%.0f\t%s\t%s\n", c.Name, c.BufferM, strings.Join(rules, "; "), c.Description)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
