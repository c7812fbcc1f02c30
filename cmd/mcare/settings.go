package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/atinylittleshell/memorycare/internal/render"
)

func (a *app) runEmails(ctx context.Context, args []string) error {
	return subcommands(ctx, "emails", args, map[string]command{
		"list":   a.listEmails,
		"add":    a.addEmail,
		"remove": a.removeEmail,
	})
}

func (a *app) listEmails(ctx context.Context, args []string) error {
	emails, err := a.records.FamilyEmails(ctx)
	if err != nil {
		return err
	}
	a.out.Emails(emails)
	return nil
}

func (a *app) addEmail(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: emails add <email>")
	}
	email, err := a.records.AddFamilyEmail(ctx, args[0])
	if err != nil {
		return err
	}
	a.out.Notify(render.Success, "Added %s", email)
	return nil
}

func (a *app) removeEmail(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: emails remove <email>")
	}
	if err := a.records.RemoveFamilyEmail(ctx, args[0]); err != nil {
		return err
	}
	a.out.Notify(render.Success, "Removed %s", strings.TrimSpace(args[0]))
	return nil
}

// runLanguage prints the current language, or switches to the one given.
func (a *app) runLanguage(ctx context.Context, args []string) error {
	if len(args) == 0 {
		lang := a.language(ctx)
		fmt.Fprintf(a.stdout, "%s (%s)\n", lang, lang.Name())
		return nil
	}
	lang, err := models.ParseLanguage(args[0])
	if err != nil {
		return err
	}
	if err := a.records.SetLanguage(ctx, lang); err != nil {
		return err
	}
	a.out.Notify(render.Success, "Language set to %s", lang.Name())
	return nil
}
