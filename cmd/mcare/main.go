package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/atinylittleshell/memorycare/internal/assistant"
	"github.com/atinylittleshell/memorycare/internal/config"
	"github.com/atinylittleshell/memorycare/internal/core"
	"github.com/atinylittleshell/memorycare/internal/kvstore"
	"github.com/atinylittleshell/memorycare/internal/render"
	"go.uber.org/zap"
)

var BUILD_VERSION = "dev"

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

const helpText = `mcare - a local-first memory care companion

USAGE:
  mcare <command> [subcommand] [options] [args...]

COMMANDS:
  people      list | add | edit <id> | remove <id> | search <query> | summarize <id>
  journal     list | add <text> | remove <id> | tag <id>
  activities  list | add | edit <id> | remove <id> | share
  locations   list | add | remove <id> | home | nearest | guide [<id>] | notify
  emails      list | add <email> | remove <email>
  language    [en|vi]
  export      write a JSON backup of everything
  import      load a JSON backup (-mode merge|overwrite)
  ask         one-off question to the assistant
  chat        talk with the assistant

Records are stored in ~/.memorycare (override with MEMORYCARE_HOME).
The assistant reads its API key from ~/.memorycare/config.yaml or
MEMORYCARE_API_KEY / OPENAI_API_KEY.

Ids may be shortened to any unique prefix.

OPTIONS:
`

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		fmt.Print(helpText)
		flag.PrintDefaults()
		return
	}

	out := render.New(os.Stdout)

	cfg, configErrors := loadConfig()

	logger, err := initializeLogger(cfg)
	if err != nil {
		out.Notify(render.Error, "failed to initialize logger: %v", err)
		os.Exit(1)
	}
	defer logger.Sync() // Flush any buffered log entries

	logger.Info("-------- new mcare session --------", zap.Strings("args", os.Args))
	for _, err := range configErrors {
		logger.Warn("config problem", zap.Error(err))
		out.Notify(render.Info, "config: %v", err)
	}

	store, err := kvstore.Open(core.StoreFile(), logger)
	if err != nil {
		logger.Error("failed to open store", zap.Error(err))
		out.Notify(render.Error, "failed to open store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	a := newApp(cfg, store, logger, out)
	a.assistant = initializeAssistant(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.run(ctx, flag.Args()); err != nil {
		logger.Error("command failed", zap.Strings("args", flag.Args()), zap.Error(err))
		out.Notify(render.Error, "%v", err)
		stop()
		store.Close()
		logger.Sync()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, []error) {
	result, err := config.NewLoader(nil).LoadFromFile(core.ConfigFile())
	if err != nil {
		return config.DefaultConfig(), []error{err}
	}
	return result.Config, result.Errors
}

func initializeLogger(cfg *config.Config) (*zap.Logger, error) {
	logLevel := cfg.GetLogLevel()
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	return loggerConfig.Build()
}

// initializeAssistant returns nil when no API key is configured; commands that
// need the assistant report that themselves.
func initializeAssistant(cfg *config.Config, logger *zap.Logger) *assistant.Client {
	if !cfg.AssistantEnabled() {
		logger.Debug("assistant disabled: no API key")
		return nil
	}
	client, err := assistant.New(assistant.Options{
		APIKey:  cfg.Assistant.APIKey,
		BaseURL: cfg.Assistant.BaseURL,
		Model:   cfg.Assistant.Model,
		Logger:  logger,
	})
	if err != nil {
		logger.Warn("assistant disabled", zap.Error(err))
		return nil
	}
	return client
}
