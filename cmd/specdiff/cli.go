package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/specdiff/internal/errors"
	"github.com/hpungsan/specdiff/internal/ops"
	"github.com/hpungsan/specdiff/internal/web"
)

// nullArg stands for a NULL column in positional rows.
const nullArg = "-"

// newCLIApp creates the CLI application with all commands.
func newCLIApp(env *ops.Env) *cli.App {
	app := &cli.App{
		Name:    "specdiff",
		Usage:   "Store specification revisions and compare their text",
		Version: Version,
		Commands: []*cli.Command{
			upsertCmd(env),
			getCmd(env),
			listCmd(env),
			rekeyCmd(env),
			attachCmd(env),
			normalizeCmd(env),
			compareCmd(env),
			diffCmd(env),
			openCmd(env),
			cleanCmd(env),
			historyCmd(env),
			serveCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// upsertCmd creates the upsert command.
func upsertCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "upsert",
		Usage:     "Create a record or update its title/notes (\"-\" leaves a field unchanged)",
		ArgsUsage: "<spec_no> <revision> [title] [notes]",
		Action: func(c *cli.Context) error {
			input, err := ops.UpsertRow(rowArgs(c.Args().Slice(), 2, 4))
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Upsert(c.Context, env.DB, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// getCmd creates the get command.
func getCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Show a record and its attachments",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return outputError(err)
			}
			output, err := ops.Get(c.Context, env, ops.GetInput{Key: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// listCmd creates the list command.
func listCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List records ordered by key",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, env.DB, ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// rekeyCmd creates the rekey command.
func rekeyCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "rekey",
		Usage:     "Move a record to a new key",
		ArgsUsage: "<old_key> <new_key>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 2); err != nil {
				return outputError(err)
			}
			output, err := ops.Rekey(c.Context, env.DB, ops.RekeyInput{
				OldKey: c.Args().Get(0),
				NewKey: c.Args().Get(1),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// attachCmd creates the attach command.
func attachCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "attach",
		Usage:     "Copy a file into the content store and attach it (kind: doc, txt, pdf)",
		ArgsUsage: "<key> <kind> <path>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 3); err != nil {
				return outputError(err)
			}
			output, err := ops.Attach(c.Context, env, ops.AttachInput{
				Key:  c.Args().Get(0),
				Kind: c.Args().Get(1),
				Path: c.Args().Get(2),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// normalizeCmd creates the normalize command.
func normalizeCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "normalize",
		Usage:     "Convert original documents to text (all records with a document when no key is given)",
		ArgsUsage: "[key...]",
		Action: func(c *cli.Context) error {
			output, err := ops.BatchNormalize(c.Context, env, ops.BatchNormalizeInput{Keys: c.Args().Slice()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// compareCmd creates the compare command.
func compareCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "Diff the normalized text of two records into an HTML document",
		ArgsUsage: "<key_a> <key_b>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "Cleanup mode: raw|semantic|efficiency"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output .html path (default: <output_dir>/diff.html)"},
			&cli.BoolFlag{Name: "open", Usage: "Open the document with the default viewer"},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 2); err != nil {
				return outputError(err)
			}
			output, err := ops.Compare(c.Context, env, ops.CompareInput{
				KeyA:       c.Args().Get(0),
				KeyB:       c.Args().Get(1),
				Mode:       c.String("mode"),
				OutputPath: c.String("output"),
				Open:       c.Bool("open"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// diffCmd creates the diff command.
func diffCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "diff",
		Usage:     "Diff two files (or two texts with --text) without the record store",
		ArgsUsage: "<a> <b>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "text", Usage: "Treat arguments as the texts themselves"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Usage: "Cleanup mode: raw|semantic|efficiency"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output .html path (default: <output_dir>/diff.html)"},
			&cli.BoolFlag{Name: "open", Usage: "Open the document with the default viewer"},
			&cli.BoolFlag{Name: "segments", Usage: "Include the diff segments in the output"},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 2); err != nil {
				return outputError(err)
			}
			contentType := ops.ContentFile
			if c.Bool("text") {
				contentType = ops.ContentText
			}
			output, err := ops.DiffFiles(c.Context, env, ops.DiffInput{
				ContentType:     contentType,
				A:               c.Args().Get(0),
				B:               c.Args().Get(1),
				Mode:            c.String("mode"),
				OutputPath:      c.String("output"),
				Open:            c.Bool("open"),
				IncludeSegments: c.Bool("segments"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// openCmd creates the open command.
func openCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:      "open",
		Usage:     "Open a record's attachment with the default viewer",
		ArgsUsage: "<key>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: "doc", Usage: "Attachment kind: doc|txt|pdf"},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return outputError(err)
			}
			output, err := ops.Open(c.Context, env, ops.OpenInput{Key: c.Args().First(), Kind: c.String("kind")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// cleanCmd creates the clean command.
func cleanCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Remove stored content no record references",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Only list unreferenced content"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Clean(c.Context, env, ops.CleanInput{DryRun: c.Bool("dry-run")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recent comparisons",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultHistoryLimit, Usage: "Maximum items to return"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.History(c.Context, env.DB, ops.HistoryInput{Limit: c.Int("limit")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(env *ops.Env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8765, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(env, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(srv); err != nil {
				return outputError(errors.NewIO("serve", srv.Addr, err))
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON writes result to the app's writer (stdout) as JSON.
func outputJSON(c *cli.Context, v any) error {
	return writeJSON(c.App.Writer, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if specErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", specErr.Code, specErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// requireArgs checks the number of positional arguments.
func requireArgs(c *cli.Context, n int) error {
	if c.NArg() != n {
		return errors.NewInvalidRequest(fmt.Sprintf("%s expects %d argument(s): %s", c.Command.Name, n, c.Command.ArgsUsage))
	}
	return nil
}

// rowArgs maps positional arguments to a row, nullArg becoming nil. Rows
// between minWidth and width are padded with nils; other widths pass through
// unchanged so the row check reports the mismatch.
func rowArgs(args []string, minWidth, width int) []*string {
	row := make([]*string, len(args))
	for i, a := range args {
		if a != nullArg {
			row[i] = &a
		}
	}
	if len(row) >= minWidth && len(row) < width {
		row = append(row, make([]*string, width-len(row))...)
	}
	return row
}
