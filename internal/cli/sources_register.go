package cli

import (
	"fmt"
	"io"

	"github.com/mrlokans/storyhub/internal/entrypoint"
)

// SourcesRegisterCommand upserts the YAML source definitions of a directory.
type SourcesRegisterCommand struct {
	DBOptions
	Dir string `long:"dir" short:"d" env:"SOURCES_DIR" default:"./sources" description:"Directory with *.yaml source definitions"`

	out io.Writer
}

func (cmd *SourcesRegisterCommand) Execute(args []string) error {
	app, err := entrypoint.NewApp(cmd.config())
	if err != nil {
		return err
	}
	defer app.Close()

	n, err := app.RegisterSources(cmd.Dir)
	if err != nil {
		return fmt.Errorf("failed to register sources from %s: %w", cmd.Dir, err)
	}
	fmt.Fprintf(cmd.out, "Registered %d sources from %s\n", n, cmd.Dir)

	srcs, err := app.Sources.ListSources()
	if err != nil {
		return err
	}
	for _, src := range srcs {
		fmt.Fprintf(cmd.out, "  %-20s %-8s %s\n", src.Namespace, src.ContentType, src.BaseURL)
	}
	return nil
}
