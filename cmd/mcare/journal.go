package main

import (
	"context"
	"errors"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/atinylittleshell/memorycare/internal/render"
	"go.uber.org/zap"
)

func (a *app) runJournal(ctx context.Context, args []string) error {
	return subcommands(ctx, "journal", args, map[string]command{
		"list":   a.listJournal,
		"add":    a.addJournalEntry,
		"remove": a.removeJournalEntry,
		"tag":    a.tagJournalEntry,
	})
}

func (a *app) listJournal(ctx context.Context, args []string) error {
	entries, err := a.records.Journal.List(ctx)
	if err != nil {
		return err
	}
	a.out.Journal(entries)
	return nil
}

func (a *app) addJournalEntry(ctx context.Context, args []string) error {
	fs := a.flagSet("journal add")
	mood := fs.String("mood", "", "how you are feeling")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return errors.New("journal entry text is required")
	}

	entry, err := a.records.Journal.Add(ctx, models.JournalEntry{
		Timestamp: a.now().UnixMilli(),
		Text:      text,
		Mood:      strings.TrimSpace(*mood),
	})
	if err != nil {
		return err
	}
	a.out.Notify(render.Success, "Journal entry saved")

	if a.assistant != nil {
		a.tag(ctx, entry)
	}
	return nil
}

func (a *app) removeJournalEntry(ctx context.Context, args []string) error {
	ref, _, err := splitID(args)
	if err != nil {
		return err
	}
	entry, err := a.records.Journal.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.records.Journal.Delete(ctx, entry.ID); err != nil {
		return err
	}
	a.out.Notify(render.Success, "Journal entry removed")
	return nil
}

func (a *app) tagJournalEntry(ctx context.Context, args []string) error {
	ref, _, err := splitID(args)
	if err != nil {
		return err
	}
	if _, err := a.requireAssistant(); err != nil {
		return err
	}
	entry, err := a.records.Journal.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if !a.tag(ctx, entry) {
		return errors.New("tags were not generated")
	}
	return nil
}

// tag generates and stores tags for entry. The entry stays saved when
// tagging fails.
func (a *app) tag(ctx context.Context, entry models.JournalEntry) bool {
	lang := a.language(ctx)
	var tags []string
	err := a.thinking(ctx, func(ctx context.Context) (err error) {
		tags, err = a.assistant.GenerateJournalTags(ctx, entry.Text, lang)
		return err
	})
	if err != nil {
		a.logger.Warn("failed to generate journal tags", zap.String("entry", entry.ID), zap.Error(err))
		a.out.Notify(render.Error, "Could not generate tags: %v", err)
		return false
	}
	if _, err := a.records.SetJournalTags(ctx, entry.ID, tags); err != nil {
		a.logger.Warn("failed to store journal tags", zap.String("entry", entry.ID), zap.Error(err))
		a.out.Notify(render.Error, "Could not save tags: %v", err)
		return false
	}
	a.out.Notify(render.Info, "Tagged: %s", strings.Join(tags, ", "))
	return true
}
