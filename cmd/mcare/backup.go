package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/backup"
	"github.com/atinylittleshell/memorycare/internal/prompt"
	"github.com/atinylittleshell/memorycare/internal/render"
	"go.uber.org/zap"
)

// runExport writes a backup of every stored key. "-o -" writes to stdout.
func (a *app) runExport(ctx context.Context, args []string) error {
	fs := a.flagSet("export")
	output := fs.String("o", "", "output file (default memorycare_backup_<date>.json, - for stdout)")
	toClipboard := fs.Bool("clipboard", false, "copy the backup JSON to the clipboard instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	doc, err := backup.Export(ctx, a.store)
	if err != nil {
		return err
	}

	if *toClipboard {
		var buf bytes.Buffer
		if err := doc.Encode(&buf); err != nil {
			return err
		}
		if err := a.copyClipboard(buf.String()); err != nil {
			return err
		}
		a.out.Notify(render.Success, "Copied backup of %d keys to clipboard", len(doc))
		return nil
	}

	if *output == "-" {
		return doc.Encode(a.stdout)
	}

	path := *output
	if path == "" {
		path = backup.FileName(a.now())
	}
	if err := doc.WriteFile(path); err != nil {
		return err
	}
	a.logger.Info("exported backup", zap.String("path", path), zap.Strings("keys", doc.Keys()))
	a.out.Notify(render.Success, "Backup saved to %s", path)
	return nil
}

// runImport loads a backup file. Without -mode the user is asked on a
// terminal; elsewhere -mode is required.
func (a *app) runImport(ctx context.Context, args []string) error {
	fs := a.flagSet("import")
	modeFlag := fs.String("mode", "", "merge or overwrite")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: import [-mode merge|overwrite] <file>")
	}
	path := fs.Arg(0)

	decoded, err := backup.ReadFile(path)
	if err != nil {
		return err
	}

	var mode backup.Mode
	switch {
	case *modeFlag != "":
		if mode, err = backup.ParseMode(*modeFlag); err != nil {
			return err
		}
	case a.isTerminal():
		if mode, err = prompt.ChooseImportMode(filepath.Base(path), a.stdin, a.stdout); err != nil {
			return err
		}
	default:
		return errors.New("-mode is required when not running in a terminal")
	}

	result, err := backup.Import(ctx, a.store, decoded.Document, mode, a.logger)
	if err != nil {
		return err
	}

	a.out.Notify(render.Success, "Imported %s (%s)", filepath.Base(path), result.Mode)
	a.out.Notify(render.Info, "Updated: %s", joinOrNone(result.Written))
	if len(result.Removed) > 0 {
		a.out.Notify(render.Info, "Removed: %s", strings.Join(result.Removed, ", "))
	}
	if len(decoded.Skipped) > 0 {
		a.out.Notify(render.Info, "Ignored unknown keys: %s", strings.Join(decoded.Skipped, ", "))
	}
	return nil
}

func joinOrNone(keys []string) string {
	if len(keys) == 0 {
		return "none"
	}
	return strings.Join(keys, ", ")
}
