package commands

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eddy-editor/eddy/econfig"
	"github.com/eddy-editor/eddy/editorctx"
	"github.com/eddy-editor/eddy/elog"
)

const shutdownTimeout = 5 * time.Second

// Open is the root command's default action: load the current
// project's configuration, build the language registry it describes,
// and open every file named on the command line.
func Open(cmd *cobra.Command, args []string) error {
	status := StatusReporter{}

	projectDir, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, err := econfig.Load(projectDir)
	if err != nil {
		status.Error("loading configuration", err)
		return err
	}
	cfg.Watch()

	ectx := editorctx.New(cfg)
	ectx.Registry = BuildRegistry(cfg)

	ctx := context.Background()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := ectx.Shutdown(shutdownCtx); err != nil {
			elog.Warnw("language servers did not shut down cleanly", "error", err)
		}
	}()

	for _, path := range args {
		doc, err := ectx.Open(ctx, path)
		if err != nil {
			status.Error("opening "+path, err)
			continue
		}
		language := ""
		if doc.Mode != nil {
			language = doc.Mode.LanguageID()
		}
		status.Opened(path, language)
	}

	return nil
}
