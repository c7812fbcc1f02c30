package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atinylittleshell/memorycare/internal/assistant"
	"github.com/atinylittleshell/memorycare/internal/config"
	"github.com/atinylittleshell/memorycare/internal/kvstore"
	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/atinylittleshell/memorycare/internal/prompt"
	"github.com/atinylittleshell/memorycare/internal/records"
	"github.com/atinylittleshell/memorycare/internal/render"
	"github.com/atotto/clipboard"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// app carries everything a command needs. Tests build one around a temporary
// store and buffers.
type app struct {
	cfg       *config.Config
	store     *kvstore.Store
	records   *records.Service
	assistant *assistant.Client
	logger    *zap.Logger
	out       *render.Renderer

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	isTerminal    func() bool
	copyClipboard func(string) error
	now           func() time.Time
}

func newApp(cfg *config.Config, store *kvstore.Store, logger *zap.Logger, out *render.Renderer) *app {
	return &app{
		cfg:     cfg,
		store:   store,
		records: records.NewService(store),
		logger:  logger,
		out:     out,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		isTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
		},
		copyClipboard: clipboard.WriteAll,
		now:           time.Now,
	}
}

type command func(ctx context.Context, args []string) error

func (a *app) commands() map[string]command {
	return map[string]command{
		"people":     a.runPeople,
		"journal":    a.runJournal,
		"activities": a.runActivities,
		"locations":  a.runLocations,
		"emails":     a.runEmails,
		"language":   a.runLanguage,
		"export":     a.runExport,
		"import":     a.runImport,
		"ask":        a.runAsk,
		"chat":       a.runChat,
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("no command given (try -h)")
	}
	cmd, ok := a.commands()[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q (try -h)", args[0])
	}
	return cmd(ctx, args[1:])
}

// subcommands dispatches args[0] to one of handlers. An empty args runs
// "list".
func subcommands(ctx context.Context, name string, args []string, handlers map[string]command) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	handler, ok := handlers[sub]
	if !ok {
		return fmt.Errorf("unknown %s subcommand %q", name, sub)
	}
	return handler(ctx, args)
}

// flagSet is a subcommand FlagSet that can report which flags were given.
type flagSet struct {
	*flag.FlagSet
}

func (a *app) flagSet(name string) *flagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return &flagSet{fs}
}

// set reports whether the flag was given on the command line.
func (fs *flagSet) set(name string) bool {
	given := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			given = true
		}
	})
	return given
}

// splitID takes a leading positional id off args so flags may follow it.
func splitID(args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, errors.New("missing id")
	}
	return args[0], args[1:], nil
}

// requireAssistant returns the assistant or an error explaining how to enable it.
func (a *app) requireAssistant() (*assistant.Client, error) {
	if a.assistant == nil {
		return nil, fmt.Errorf("%w: set assistant.apiKey in config.yaml or MEMORYCARE_API_KEY", assistant.ErrNotConfigured)
	}
	return a.assistant, nil
}

// thinking runs a blocking assistant call, with a spinner when attached to a
// terminal.
func (a *app) thinking(ctx context.Context, fn func(ctx context.Context) error) error {
	if !a.isTerminal() {
		return fn(ctx)
	}
	return prompt.Wait(ctx, "Thinking...", a.stdin, a.stdout, fn)
}

// copyOrPrint copies text to the clipboard when asked and always prints it.
func (a *app) copyOrPrint(text string, copyIt bool) {
	fmt.Fprintln(a.stdout, text)
	if !copyIt {
		return
	}
	if err := a.copyClipboard(text); err != nil {
		a.logger.Warn("clipboard copy failed", zap.Error(err))
		a.out.Notify(render.Error, "could not copy to clipboard: %v", err)
		return
	}
	a.out.Notify(render.Success, "Copied to clipboard")
}

// language is the stored UI language, or the configured default when the user
// never picked one.
func (a *app) language(ctx context.Context) models.Language {
	if _, err := a.store.Get(ctx, models.KeyLanguage); errors.Is(err, kvstore.ErrNotFound) {
		if lang, err := models.ParseLanguage(a.cfg.Language); err == nil {
			return lang
		}
	}
	lang, err := a.records.Language(ctx)
	if err != nil {
		a.logger.Warn("failed to read language", zap.Error(err))
		return models.LanguageEnglish
	}
	return lang
}
