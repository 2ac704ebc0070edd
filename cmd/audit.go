package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cityzones/safezones-cli/internal/audit"
)

var auditStrict bool

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit the category registry for shadowed tag rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		if err := reg.Validate(); err != nil {
			return err
		}

		report := audit.Run(reg)
		for _, line := range report.Format() {
			fmt.Println(line)
		}
		if auditStrict && !report.Clean() {
			return fmt.Errorf("audit: %d shadowed tag rules", len(report.Overlaps))
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().BoolVar(&auditStrict, "strict", false, "exit non-zero when overlaps are found")
	rootCmd.AddCommand(auditCmd)
}
