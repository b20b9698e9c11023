package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/checker"
	"github.com/dorm-project/dorm/internal/config"
	"github.com/dorm-project/dorm/internal/loader"
	"github.com/dorm-project/dorm/internal/migrate"
)

// newMigrateCmd builds the "migrate" command tree: "plan" prints the
// statements without running them, "up" plans and executes.
func newMigrateCmd(log *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Plan and run data migrations between two designs over the same domain",
	}
	cmd.AddCommand(newMigratePlanCmd(log, false))
	cmd.AddCommand(newMigratePlanCmd(log, true))
	return cmd
}

func newMigratePlanCmd(log *zap.Logger, apply bool) *cobra.Command {
	var domainFile, sourceDesignFile, targetDesignFile string

	use, short := "plan", "Print the migration plan without executing it"
	if apply {
		use, short = "up", "Plan and execute the migration"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			domainData, err := os.ReadFile(domainFile)
			if err != nil {
				return fmt.Errorf("reading domain file: %w", err)
			}

			source := catalog.New()
			if err := loader.LoadDomain(domainFile, domainData, source, log); err != nil {
				return err
			}
			target := catalog.New()
			if err := loader.LoadDomain(domainFile, domainData, target, log); err != nil {
				return err
			}

			sourceDesignData, err := os.ReadFile(sourceDesignFile)
			if err != nil {
				return fmt.Errorf("reading source design file: %w", err)
			}
			sourceParadigm, err := loader.LoadDesign(sourceDesignFile, sourceDesignData, source, log)
			if err != nil {
				return err
			}

			targetDesignData, err := os.ReadFile(targetDesignFile)
			if err != nil {
				return fmt.Errorf("reading target design file: %w", err)
			}
			if _, err := loader.LoadDesign(targetDesignFile, targetDesignData, target, log); err != nil {
				return err
			}

			if diags := checker.CheckDesign(source, log); hasErrors(diags) {
				printDiagnostics(diags)
				return fmt.Errorf("source design failed %d check(s)", countErrors(diags))
			}
			if diags := checker.CheckDesign(target, log); hasErrors(diags) {
				printDiagnostics(diags)
				return fmt.Errorf("target design failed %d check(s)", countErrors(diags))
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			s, err := openSink(cfg, log)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx := context.Background()
			meta, err := s.ReadMetadata(ctx)
			if err != nil {
				return err
			}

			plan, err := migrate.Plan(source, target, sourceParadigm, meta.HasData, log)
			if err != nil {
				return err
			}

			for _, stmt := range plan.Statements {
				fmt.Println(stmt.SQL)
			}

			if !apply {
				return nil
			}

			var statements []string
			for _, stmt := range plan.Statements {
				statements = append(statements, stmt.SQL)
			}
			if err := s.Execute(ctx, statements); err != nil {
				return err
			}
			meta.DataMigrated = true
			meta.HasData = true
			return s.WriteMetadata(ctx, meta)
		},
	}
	cmd.Flags().StringVar(&domainFile, "domain", "", "path to the shared domain document")
	cmd.Flags().StringVar(&sourceDesignFile, "source-design", "", "path to the source design document")
	cmd.Flags().StringVar(&targetDesignFile, "target-design", "", "path to the target design document")
	cmd.MarkFlagRequired("domain")
	cmd.MarkFlagRequired("source-design")
	cmd.MarkFlagRequired("target-design")
	return cmd
}
