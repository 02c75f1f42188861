package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dchaplinsky/edrdr/internal/application/handlers"
)

type importFlags struct {
	format  string
	dryRun  bool
	extract bool
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import registry observations from JSON or CSV",
		Long: "Imports company and person observations. Identical facts seen in several revisions are merged " +
			"into one fact. With --extract, nameless persons are parsed from their raw records.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, csv, auto)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().BoolVar(&flags.extract, "extract", false, "Extract names from raw person records with the LLM")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	ctx := cmd.Context()

	return withImportHandler(ctx, flags.extract, func(handler *handlers.ImportHandler) error {
		fmt.Printf("Importing %s...\n", filePath)

		result, err := handler.Handle(ctx, filePath, handlers.ImportOptions{
			Format:  flags.format,
			DryRun:  flags.dryRun,
			Extract: flags.extract,
		})
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		if len(result.Errors) > 0 {
			fmt.Printf("\nValidation errors (%d):\n", len(result.Errors))
			for _, e := range result.Errors {
				fmt.Printf("  %s\n", e.Error())
			}
		}

		fmt.Println()
		if flags.dryRun {
			fmt.Printf("Dry run: %d company records and %d persons would be imported", result.Companies, result.Persons)
		} else {
			fmt.Printf("Imported: %d company records, %d persons", result.Companies, result.Persons)
		}
		if result.Extracted > 0 {
			fmt.Printf(", %d extracted", result.Extracted)
		}
		if len(result.Errors) > 0 {
			fmt.Printf(", %d errors", len(result.Errors))
		}
		fmt.Println()

		return nil
	})
}
