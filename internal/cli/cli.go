// Package cli implements the storyhub command line. Running without a
// command starts the HTTP server.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/mrlokans/storyhub/internal/config"
	"github.com/mrlokans/storyhub/internal/entrypoint"
)

// DBOptions is embedded by the commands that open the database.
type DBOptions struct {
	DatabasePath string `long:"db" env:"DATABASE_PATH" description:"Path to the SQLite database (default: DATABASE_PATH or ./storyhub.db)"`
}

func (o DBOptions) config() *config.Config {
	cfg := config.NewConfig()
	if o.DatabasePath != "" {
		cfg.Database.Path = o.DatabasePath
	}
	return cfg
}

// NewParser builds the command parser. Command output goes to out.
func NewParser(out io.Writer, version string) *flags.Parser {
	parser := flags.NewNamedParser("storyhub", flags.Default)
	parser.SubcommandsOptional = true

	mustAdd(parser, "serve", "Start the HTTP server",
		"Start the HTTP server. This is the default when no command is given.",
		&ServeCommand{version: version})
	mustAdd(parser, "ebook-import", "Import a plain-text e-book",
		"Copy a text file into private storage, split it into chapters and save it.",
		&EbookImportCommand{out: out})
	mustAdd(parser, "category-sync", "Refresh the category tree of content sources",
		"Fetch, reconcile and store the categories of one source or of all sources.",
		&CategorySyncCommand{out: out})
	mustAdd(parser, "sources-register", "Register source definitions from YAML files",
		"Load every *.yaml source definition in a directory and upsert it by namespace.",
		&SourcesRegisterCommand{out: out})
	mustAdd(parser, "reconcile", "Preview category reconciliation",
		"Read a JSON array of categories and print the reconciled tree. Nothing is stored.",
		&ReconcileCommand{out: out})

	return parser
}

func mustAdd(parser *flags.Parser, name, short, long string, data any) {
	if _, err := parser.AddCommand(name, short, long, data); err != nil {
		panic(err)
	}
}

// Execute parses args and runs the selected command. Help output is not an error.
func Execute(args []string, version string) error {
	parser := NewParser(os.Stdout, version)
	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}

	if parser.Active == nil {
		if len(rest) > 0 {
			err := fmt.Errorf("unknown command %q", rest[0])
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		return (&ServeCommand{version: version}).Execute(nil)
	}
	return nil
}

// ServeCommand runs the HTTP server until interrupted.
type ServeCommand struct {
	version string
}

func (cmd *ServeCommand) Execute(args []string) error {
	entrypoint.Run(config.NewConfig(), cmd.version)
	return nil
}
