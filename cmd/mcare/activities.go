package main

import (
	"context"
	"errors"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/atinylittleshell/memorycare/internal/render"
	"github.com/atinylittleshell/memorycare/internal/share"
)

func (a *app) runActivities(ctx context.Context, args []string) error {
	return subcommands(ctx, "activities", args, map[string]command{
		"list":   a.listActivities,
		"add":    a.addActivity,
		"edit":   a.editActivity,
		"remove": a.removeActivity,
		"share":  a.shareActivities,
	})
}

func (a *app) listActivities(ctx context.Context, args []string) error {
	activities, err := a.records.Activities.List(ctx)
	if err != nil {
		return err
	}
	a.out.Activities(activities)
	return nil
}

type activityFlags struct {
	name, time, description *string
	recurring               *bool
}

func (a *app) activityFlagSet(name string) (*flagSet, activityFlags) {
	fs := a.flagSet(name)
	af := activityFlags{
		name:        fs.String("name", "", "what to do"),
		time:        fs.String("time", "", "time of day, HH:MM"),
		description: fs.String("description", "", "extra detail"),
		recurring:   fs.Bool("recurring", false, "repeat every day"),
	}
	return fs, af
}

func (a *app) addActivity(ctx context.Context, args []string) error {
	fs, af := a.activityFlagSet("activities add")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := strings.TrimSpace(*af.name)
	if name == "" {
		return errors.New("a name is required (-name)")
	}
	at, err := models.ParseTimeOfDay(*af.time)
	if err != nil {
		return err
	}

	activity, err := a.records.Activities.Add(ctx, models.Activity{
		Name:        name,
		Time:        at,
		Description: strings.TrimSpace(*af.description),
		IsRecurring: *af.recurring,
	})
	if err != nil {
		return err
	}
	a.out.Notify(render.Success, "Planned %s at %s", activity.Name, activity.Time)
	return nil
}

func (a *app) editActivity(ctx context.Context, args []string) error {
	ref, rest, err := splitID(args)
	if err != nil {
		return err
	}
	fs, af := a.activityFlagSet("activities edit")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	current, err := a.records.Activities.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	activity, err := a.records.Activities.Modify(ctx, current.ID, func(act *models.Activity) error {
		if fs.set("name") {
			if strings.TrimSpace(*af.name) == "" {
				return errors.New("name cannot be empty")
			}
			act.Name = strings.TrimSpace(*af.name)
		}
		if fs.set("time") {
			at, err := models.ParseTimeOfDay(*af.time)
			if err != nil {
				return err
			}
			act.Time = at
		}
		if fs.set("description") {
			act.Description = strings.TrimSpace(*af.description)
		}
		if fs.set("recurring") {
			act.IsRecurring = *af.recurring
		}
		return nil
	})
	if err != nil {
		return err
	}
	a.out.Notify(render.Success, "Updated %s", activity.Name)
	return nil
}

func (a *app) removeActivity(ctx context.Context, args []string) error {
	ref, _, err := splitID(args)
	if err != nil {
		return err
	}
	activity, err := a.records.Activities.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.records.Activities.Delete(ctx, activity.ID); err != nil {
		return err
	}
	a.out.Notify(render.Success, "Removed %s", activity.Name)
	return nil
}

// shareActivities prints a mailto link that drafts today's plan to every
// family email.
func (a *app) shareActivities(ctx context.Context, args []string) error {
	fs := a.flagSet("activities share")
	copyIt := fs.Bool("copy", false, "copy the link to the clipboard")
	if err := fs.Parse(args); err != nil {
		return err
	}

	emails, err := a.records.FamilyEmails(ctx)
	if err != nil {
		return err
	}
	activities, err := a.records.Activities.List(ctx)
	if err != nil {
		return err
	}
	link, err := share.PlanMailto(emails, activities, a.language(ctx))
	if err != nil {
		return err
	}
	a.copyOrPrint(link, *copyIt)
	return nil
}
