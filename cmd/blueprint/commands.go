package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dukex/blueprint/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func platformFlag(name, usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     name,
		Aliases:  []string{name[:1]},
		Usage:    usage,
		Required: true,
	}
}

func outFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Write the document to this file instead of standard output",
	}
}

// validationReport is one line of the validate output.
type validationReport struct {
	Source string `json:"source"`
	*models.ValidationResult
}

func (a *app) validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Check blueprint documents against a platform catalog",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			platformFlag("platform", "Platform the documents are written for (make, n8n, zapier)"),
			&cli.BoolFlag{
				Name:  "native",
				Usage: "Documents are native platform exports rather than blueprint definitions",
			},
		},
		Action: a.validate,
	}
}

func (a *app) validate(ctx context.Context, command *cli.Command) error {
	inputs, err := a.readInputs(command.Args().Slice())
	if err != nil {
		return err
	}

	p := command.String("platform")
	invalid := 0

	for _, in := range inputs {
		data := in.data

		if command.Bool("native") {
			def, err := a.blueprint.Import(ctx, p, data)
			if err != nil {
				return fmt.Errorf("%s: %w", in.name, err)
			}

			if data, err = json.Marshal(def); err != nil {
				return fmt.Errorf("%s: %w", in.name, err)
			}
		}

		result, err := a.blueprint.Validate(ctx, p, data)
		if err != nil {
			return err
		}

		if !result.IsValid {
			invalid++
		}

		if err := a.printJSON(validationReport{Source: in.name, ValidationResult: result}); err != nil {
			return err
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%w: %d of %d documents", ErrInvalidBlueprint, invalid, len(inputs))
	}

	return nil
}

func (a *app) fixCommand() *cli.Command {
	return &cli.Command{
		Name:      "fix",
		Aliases:   []string{"f"},
		Usage:     "Repair recognizable defects of a blueprint definition",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			platformFlag("platform", "Platform the document is written for (make, n8n, zapier)"),
			outFlag(),
		},
		Action: a.fix,
	}
}

// fix prints the full repair report, or writes the repaired definition to
// --out and prints only the fixes.
func (a *app) fix(ctx context.Context, command *cli.Command) error {
	in, err := a.readInput(command.Args().Slice())
	if err != nil {
		return err
	}

	result, err := a.blueprint.AutoFix(ctx, command.String("platform"), in.data)
	if err != nil {
		return err
	}

	if out := command.String("out"); out != "" {
		data, err := json.MarshalIndent(result.Definition, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode repaired blueprint: %w", err)
		}

		if err := a.writeOutput(out, data); err != nil {
			return err
		}

		err = a.printJSON(result.Fixes)
		if err != nil {
			return err
		}
	} else if err := a.printJSON(result); err != nil {
		return err
	}

	if !result.Validation.IsValid {
		return fmt.Errorf("%w: %d remaining after repair", ErrInvalidBlueprint, len(result.Validation.Errors))
	}

	return nil
}

func (a *app) importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Turn a native platform export into a blueprint definition",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			platformFlag("platform", "Platform of the export (make, n8n, zapier)"),
			outFlag(),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			in, err := a.readInput(command.Args().Slice())
			if err != nil {
				return err
			}

			def, err := a.blueprint.Import(ctx, command.String("platform"), in.data)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(def, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode blueprint: %w", err)
			}

			return a.writeOutput(command.String("out"), data)
		},
	}
}

func (a *app) convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Aliases:   []string{"c"},
		Usage:     "Translate a native export from one platform to another",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			platformFlag("from", "Platform of the input document"),
			platformFlag("to", "Platform of the output document"),
			outFlag(),
			&cli.BoolFlag{
				Name:  "report",
				Usage: "Print the full conversion report instead of the document",
			},
		},
		Action: a.convert,
	}
}

func (a *app) convert(ctx context.Context, command *cli.Command) error {
	in, err := a.readInput(command.Args().Slice())
	if err != nil {
		return err
	}

	result, err := a.blueprint.Convert(ctx, command.String("from"), command.String("to"), in.data)
	if err != nil {
		return err
	}

	for _, d := range result.DegradedNodes {
		a.logger.WarnContext(ctx, "Node replaced during conversion",
			"node", d.Key,
			"source_type", d.SourceType,
			"target_type", d.TargetType,
			"reason", d.Reason)
	}

	for _, w := range result.Warnings {
		a.logger.WarnContext(ctx, w)
	}

	if command.Bool("report") {
		return a.printJSON(result)
	}

	return a.writeOutput(command.String("out"), result.Document)
}

func (a *app) sanitizeCommand() *cli.Command {
	return &cli.Command{
		Name:      "sanitize",
		Aliases:   []string{"s"},
		Usage:     "Strip credentials, instance ids and emails so documents can be shared as templates",
		ArgsUsage: "[FILE...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "out-dir",
				Usage: "Write one template per input into this directory, named after the document",
			},
		},
		Action: a.sanitize,
	}
}

func (a *app) sanitize(ctx context.Context, command *cli.Command) error {
	inputs, err := a.readInputs(command.Args().Slice())
	if err != nil {
		return err
	}

	outDir := command.String("out-dir")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil { //nolint:gosec // output directory is user-facing
			return fmt.Errorf("failed to create %s: %w", outDir, err)
		}
	}

	taken := make(map[string]bool, len(inputs))

	for _, in := range inputs {
		out, err := a.blueprint.Sanitize(ctx, in.data)
		if err != nil {
			return fmt.Errorf("%s: %w", in.name, err)
		}

		if outDir == "" {
			if err := a.writeOutput("", out); err != nil {
				return err
			}

			continue
		}

		path := filepath.Join(outDir, templateName(in, taken))
		if err := a.writeOutput(path, out); err != nil {
			return err
		}

		if _, err := fmt.Fprintln(a.out, path); err != nil {
			return err
		}
	}

	return nil
}

func (a *app) modulesCommand() *cli.Command {
	return &cli.Command{
		Name:    "modules",
		Aliases: []string{"m"},
		Usage:   "Search the module catalog of a platform",
		Flags: []cli.Flag{
			platformFlag("platform", "Platform whose catalog is searched (make, n8n, zapier)"),
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Keyword matched against module names and descriptions",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Only list modules of this category",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the catalog entries as JSON",
			},
		},
		Action: a.modules,
	}
}

func (a *app) modules(ctx context.Context, command *cli.Command) error {
	entries, err := a.blueprint.SearchModules(ctx, command.String("platform"), command.String("query"), command.String("category"))
	if err != nil {
		return err
	}

	if command.Bool("json") {
		return a.printJSON(entries)
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tKIND\tALIASES")

	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CanonicalName, e.Category, e.Kind, strings.Join(e.KnownAliases, ","))
	}

	return w.Flush()
}
