package main

import (
	"context"
	"errors"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/atinylittleshell/memorycare/internal/render"
	"go.uber.org/zap"
)

func (a *app) runPeople(ctx context.Context, args []string) error {
	return subcommands(ctx, "people", args, map[string]command{
		"list":      a.listPeople,
		"add":       a.addPerson,
		"edit":      a.editPerson,
		"remove":    a.removePerson,
		"search":    a.searchPeople,
		"summarize": a.summarizePerson,
	})
}

func (a *app) listPeople(ctx context.Context, args []string) error {
	people, err := a.records.People.List(ctx)
	if err != nil {
		return err
	}
	a.out.People(people)
	return nil
}

type personFlags struct {
	name, relationship, photo, info, voice *string
}

func (a *app) personFlagSet(name string) (*flagSet, personFlags) {
	fs := a.flagSet(name)
	pf := personFlags{
		name:         fs.String("name", "", "person's name"),
		relationship: fs.String("relationship", "", "how they are related (daughter, neighbour, ...)"),
		photo:        fs.String("photo", "", "photo URL"),
		info:         fs.String("info", "", "key information to remember about them"),
		voice:        fs.String("voice", "", "voice note URL"),
	}
	return fs, pf
}

func (a *app) addPerson(ctx context.Context, args []string) error {
	fs, pf := a.personFlagSet("people add")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := strings.TrimSpace(*pf.name)
	if name == "" {
		return errors.New("a name is required (-name)")
	}

	person, err := a.records.People.Add(ctx, models.Person{
		Name:         name,
		Relationship: strings.TrimSpace(*pf.relationship),
		PhotoURL:     strings.TrimSpace(*pf.photo),
		KeyInfo:      strings.TrimSpace(*pf.info),
		VoiceNoteURL: strings.TrimSpace(*pf.voice),
	})
	if err != nil {
		return err
	}
	a.out.Notify(render.Success, "Added %s", person.Name)

	if a.assistant != nil && person.KeyInfo != "" {
		a.summarize(ctx, person)
	}
	return nil
}

func (a *app) editPerson(ctx context.Context, args []string) error {
	ref, rest, err := splitID(args)
	if err != nil {
		return err
	}
	fs, pf := a.personFlagSet("people edit")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	current, err := a.records.People.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	infoChanged := false
	person, err := a.records.People.Modify(ctx, current.ID, func(p *models.Person) error {
		if fs.set("name") {
			if strings.TrimSpace(*pf.name) == "" {
				return errors.New("name cannot be empty")
			}
			p.Name = strings.TrimSpace(*pf.name)
		}
		if fs.set("relationship") {
			p.Relationship = strings.TrimSpace(*pf.relationship)
		}
		if fs.set("photo") {
			p.PhotoURL = strings.TrimSpace(*pf.photo)
		}
		if fs.set("voice") {
			p.VoiceNoteURL = strings.TrimSpace(*pf.voice)
		}
		if fs.set("info") && strings.TrimSpace(*pf.info) != p.KeyInfo {
			p.KeyInfo = strings.TrimSpace(*pf.info)
			p.KeyInfoSummary = ""
			infoChanged = true
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.out.Notify(render.Success, "Updated %s", person.Name)

	if infoChanged && a.assistant != nil && person.KeyInfo != "" {
		a.summarize(ctx, person)
	}
	return nil
}

func (a *app) removePerson(ctx context.Context, args []string) error {
	ref, _, err := splitID(args)
	if err != nil {
		return err
	}
	person, err := a.records.People.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.records.People.Delete(ctx, person.ID); err != nil {
		return err
	}
	a.out.Notify(render.Success, "Removed %s", person.Name)
	return nil
}

func (a *app) searchPeople(ctx context.Context, args []string) error {
	people, err := a.records.SearchPeople(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.out.People(people)
	return nil
}

func (a *app) summarizePerson(ctx context.Context, args []string) error {
	ref, _, err := splitID(args)
	if err != nil {
		return err
	}
	if _, err := a.requireAssistant(); err != nil {
		return err
	}
	person, err := a.records.People.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if person.KeyInfo == "" {
		return errors.New(person.Name + " has no key information to summarize")
	}
	if !a.summarize(ctx, person) {
		return errors.New("summary was not generated")
	}
	return nil
}

// summarize stores a generated key-info summary. Failures are reported but
// never undo the record change that triggered them.
func (a *app) summarize(ctx context.Context, person models.Person) bool {
	lang := a.language(ctx)
	var summary string
	err := a.thinking(ctx, func(ctx context.Context) (err error) {
		summary, err = a.assistant.SummarizeKeyInfo(ctx, person, lang)
		return err
	})
	if err != nil {
		a.logger.Warn("failed to summarize key info", zap.String("person", person.ID), zap.Error(err))
		a.out.Notify(render.Error, "Could not generate a summary: %v", err)
		return false
	}
	if _, err := a.records.SetPersonSummary(ctx, person.ID, summary); err != nil {
		a.logger.Warn("failed to store summary", zap.String("person", person.ID), zap.Error(err))
		a.out.Notify(render.Error, "Could not save the summary: %v", err)
		return false
	}
	a.out.Notify(render.Info, "%s", summary)
	return true
}
