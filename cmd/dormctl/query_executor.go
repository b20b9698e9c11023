package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/checker"
	"github.com/dorm-project/dorm/internal/loader"
	"github.com/dorm-project/dorm/internal/querytranslate"
)

// newQueryExecutorCmd builds the "queryExecutor" command, named after
// the external CLI surface spec.md §6 describes: translate a query
// document against a checked domain+design and print the resulting SQL.
func newQueryExecutorCmd(log *zap.Logger) *cobra.Command {
	var domainFile, designFile, queryFile string

	cmd := &cobra.Command{
		Use:   "queryExecutor",
		Short: "Translate a query document into SQL against a design",
		RunE: func(cmd *cobra.Command, args []string) error {
			domainData, err := os.ReadFile(domainFile)
			if err != nil {
				return fmt.Errorf("reading domain file: %w", err)
			}
			designData, err := os.ReadFile(designFile)
			if err != nil {
				return fmt.Errorf("reading design file: %w", err)
			}
			queryData, err := os.ReadFile(queryFile)
			if err != nil {
				return fmt.Errorf("reading query file: %w", err)
			}

			c := catalog.New()
			if err := loader.LoadDomain(domainFile, domainData, c, log); err != nil {
				return err
			}
			paradigm, err := loader.LoadDesign(designFile, designData, c, log)
			if err != nil {
				return err
			}

			diags := checker.CheckDesign(c, log)
			printDiagnostics(diags)
			if hasErrors(diags) {
				return fmt.Errorf("design failed %d check(s)", countErrors(diags))
			}

			spec, err := loader.LoadQuery(queryFile, queryData)
			if err != nil {
				return err
			}

			result, err := querytranslate.Translate(c, paradigm, spec, log)
			if err != nil {
				return err
			}
			printDiagnostics(result.Warnings)
			fmt.Println(result.SQL)
			return nil
		},
	}
	cmd.Flags().StringVar(&domainFile, "domain", "", "path to the domain document")
	cmd.Flags().StringVar(&designFile, "design", "", "path to the design document")
	cmd.Flags().StringVar(&queryFile, "query", "", "path to the query document")
	cmd.MarkFlagRequired("domain")
	cmd.MarkFlagRequired("design")
	cmd.MarkFlagRequired("query")
	return cmd
}
