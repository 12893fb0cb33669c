package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mrlokans/storyhub/internal/entrypoint"
	"github.com/mrlokans/storyhub/internal/sources"
	"github.com/mrlokans/storyhub/internal/tasks"
)

// CategorySyncCommand refreshes category trees from the command line.
type CategorySyncCommand struct {
	DBOptions
	Namespace  string `long:"namespace" short:"n" description:"Namespace of the source to sync"`
	All        bool   `long:"all" description:"Sync every registered source"`
	SourcesDir string `long:"sources-dir" description:"Register YAML source definitions from this directory first"`

	out io.Writer
}

func (cmd *CategorySyncCommand) Execute(args []string) error {
	namespace := strings.TrimSpace(cmd.Namespace)
	if namespace == "" && !cmd.All {
		return errors.New("either --namespace or --all is required")
	}
	if namespace != "" && cmd.All {
		return errors.New("--namespace and --all are mutually exclusive")
	}

	app, err := entrypoint.NewApp(cmd.config())
	if err != nil {
		return err
	}
	defer app.Close()

	if cmd.SourcesDir != "" {
		n, err := app.RegisterSources(cmd.SourcesDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.out, "Registered %d sources from %s\n", n, cmd.SourcesDir)
	}

	ctx := context.Background()
	if !cmd.All {
		result := app.Sources.SyncCategories(ctx, namespace)
		printSyncResult(cmd.out, result)
		if !result.Success {
			return errors.New(result.Reason)
		}
		return nil
	}

	results, err := app.Sources.SyncAll(ctx)
	status, message := tasks.SummarizeSync(results, err)
	if serr := app.Settings.SetCategorySyncStatus(status, message); serr != nil {
		fmt.Fprintf(cmd.out, "Warning: failed to record sync status: %v\n", serr)
	}
	for _, r := range results {
		printSyncResult(cmd.out, r)
	}
	fmt.Fprintln(cmd.out, message)
	if status != tasks.SyncStatusSuccess {
		return fmt.Errorf("category sync %s", status)
	}
	return nil
}

func printSyncResult(w io.Writer, r sources.SyncResult) {
	if r.Success {
		fmt.Fprintf(w, "[OK]    %s: %d categories\n", r.Namespace, r.Count)
		return
	}
	fmt.Fprintf(w, "[ERROR] %s: %s\n", r.Namespace, r.Reason)
}
