package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dorm-project/dorm/internal/catalog"
	"github.com/dorm-project/dorm/internal/checker"
	"github.com/dorm-project/dorm/internal/config"
	"github.com/dorm-project/dorm/internal/diagnostics"
	"github.com/dorm-project/dorm/internal/loader"
	"github.com/dorm-project/dorm/internal/schemagen"
	"github.com/dorm-project/dorm/internal/sink"
)

// newCatalogActionCmd builds the "catalogAction domain|design" command
// tree, named after the external CLI surface spec.md §6 describes.
func newCatalogActionCmd(log *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogAction",
		Short: "Load, check and materialize a domain or design",
	}

	cmd.AddCommand(newCatalogActionDomainCmd(log))
	cmd.AddCommand(newCatalogActionDesignCmd(log))
	return cmd
}

func newCatalogActionDomainCmd(log *zap.Logger) *cobra.Command {
	var file string
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "domain",
		Short: "Load a domain document and check it",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading domain file: %w", err)
			}

			c := catalog.New()
			if err := loader.LoadDomain(file, data, c, log); err != nil {
				return err
			}

			diags := checker.CheckDomain(c, log)
			printDiagnostics(diags)
			if hasErrors(diags) {
				return fmt.Errorf("domain failed %d check(s)", countErrors(diags))
			}
			if checkOnly {
				fmt.Println("domain is consistent")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to the domain document")
	cmd.Flags().BoolVar(&checkOnly, "check", false, "print a confirmation when the domain passes its checks")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newCatalogActionDesignCmd(log *zap.Logger) *cobra.Command {
	var domainFile, designFile string
	var supersede bool

	cmd := &cobra.Command{
		Use:   "design",
		Short: "Load a design document, check it, and create its schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			domainData, err := os.ReadFile(domainFile)
			if err != nil {
				return fmt.Errorf("reading domain file: %w", err)
			}
			designData, err := os.ReadFile(designFile)
			if err != nil {
				return fmt.Errorf("reading design file: %w", err)
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

			if supersede {
				confirmed := false
				prompt := &survey.Confirm{
					Message: "This will drop and recreate the existing schema. Continue?",
					Default: false,
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return fmt.Errorf("reading confirmation: %w", err)
				}
				if !confirmed {
					fmt.Println("aborted")
					return nil
				}
			}

			gen, err := schemagen.New(paradigm)
			if err != nil {
				return err
			}
			statements, err := schemagen.GenerateAll(gen, c, log)
			if err != nil {
				return err
			}
			for _, w := range gen.Warnings() {
				color.Yellow("warning: %s", w)
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
			if err := s.Execute(ctx, statements); err != nil {
				return err
			}
			return s.WriteMetadata(ctx, sink.Metadata{
				Domain:        domainFile,
				Design:        designFile,
				TablesCreated: true,
			})
		},
	}
	cmd.Flags().StringVar(&domainFile, "domain", "", "path to the domain document")
	cmd.Flags().StringVar(&designFile, "design", "", "path to the design document")
	cmd.Flags().BoolVar(&supersede, "supersede", false, "drop and recreate an existing schema")
	cmd.MarkFlagRequired("domain")
	cmd.MarkFlagRequired("design")
	return cmd
}

func printDiagnostics(diags []diagnostics.Diagnostic) {
	for _, d := range diags {
		line := d.Error()
		switch d.Severity {
		case diagnostics.Error, diagnostics.Internal:
			color.Red(line)
		case diagnostics.Warning:
			color.Yellow(line)
		default:
			fmt.Println(line)
		}
	}
}

func hasErrors(diags []diagnostics.Diagnostic) bool {
	for _, d := range diags {
		if d.IsError() {
			return true
		}
	}
	return false
}

func countErrors(diags []diagnostics.Diagnostic) int {
	n := 0
	for _, d := range diags {
		if d.IsError() {
			n++
		}
	}
	return n
}
