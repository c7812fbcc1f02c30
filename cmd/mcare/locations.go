package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/location"
	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/atinylittleshell/memorycare/internal/render"
	"github.com/atinylittleshell/memorycare/internal/share"
)

var errNoHome = errors.New("no home location set (locations home -lat .. -lon ..)")

func (a *app) runLocations(ctx context.Context, args []string) error {
	return subcommands(ctx, "locations", args, map[string]command{
		"list":    a.listLocations,
		"add":     a.addLocation,
		"remove":  a.removeLocation,
		"home":    a.homeLocation,
		"nearest": a.nearestLocation,
		"guide":   a.guideHome,
		"notify":  a.notifyFamily,
	})
}

type coordFlags struct {
	lat, lon *float64
	address  *string
}

func coordFlagSet(fs *flagSet) coordFlags {
	return coordFlags{
		lat:     fs.Float64("lat", 0, "latitude"),
		lon:     fs.Float64("lon", 0, "longitude"),
		address: fs.String("address", "", "street address"),
	}
}

// location returns the coordinates given on the command line. ok is false
// when neither -lat nor -lon was given.
func (cf coordFlags) location(fs *flagSet) (loc models.LocationInfo, ok bool, err error) {
	hasLat, hasLon := fs.set("lat"), fs.set("lon")
	if !hasLat && !hasLon {
		return loc, false, nil
	}
	if hasLat != hasLon {
		return loc, false, errors.New("both -lat and -lon are required")
	}
	loc = models.LocationInfo{
		Latitude:  *cf.lat,
		Longitude: *cf.lon,
		Address:   strings.TrimSpace(*cf.address),
	}
	if err := loc.Validate(); err != nil {
		return loc, false, err
	}
	return loc, true, nil
}

func (a *app) listLocations(ctx context.Context, args []string) error {
	places, err := a.records.Locations.List(ctx)
	if err != nil {
		return err
	}
	home, err := a.records.HomeLocation(ctx)
	if err != nil {
		return err
	}
	a.out.Locations(places, home)
	return nil
}

func (a *app) addLocation(ctx context.Context, args []string) error {
	fs := a.flagSet("locations add")
	name := fs.String("name", "", "place name")
	cf := coordFlagSet(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return errors.New("a name is required (-name)")
	}
	loc, ok, err := cf.location(fs)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("coordinates are required (-lat, -lon)")
	}

	place, err := a.records.Locations.Add(ctx, models.SavedLocation{
		Name:     strings.TrimSpace(*name),
		Location: loc,
	})
	if err != nil {
		return err
	}
	a.out.Notify(render.Success, "Saved %s", place.Name)
	return nil
}

func (a *app) removeLocation(ctx context.Context, args []string) error {
	ref, _, err := splitID(args)
	if err != nil {
		return err
	}
	place, err := a.records.Locations.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	if err := a.records.Locations.Delete(ctx, place.ID); err != nil {
		return err
	}
	a.out.Notify(render.Success, "Removed %s", place.Name)
	return nil
}

// homeLocation shows the home location, sets it from -lat/-lon or clears it.
func (a *app) homeLocation(ctx context.Context, args []string) error {
	fs := a.flagSet("locations home")
	cf := coordFlagSet(fs)
	clearHome := fs.Bool("clear", false, "forget the home location")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *clearHome {
		if err := a.records.ClearHomeLocation(ctx); err != nil {
			return err
		}
		a.out.Notify(render.Success, "Home location cleared")
		return nil
	}

	loc, ok, err := cf.location(fs)
	if err != nil {
		return err
	}
	if ok {
		if err := a.records.SetHomeLocation(ctx, loc); err != nil {
			return err
		}
		a.out.Notify(render.Success, "Home location saved")
		return nil
	}

	home, err := a.records.HomeLocation(ctx)
	if err != nil {
		return err
	}
	if home == nil {
		return errNoHome
	}
	fmt.Fprintf(a.stdout, "%.6f, %.6f\n", home.Latitude, home.Longitude)
	if home.Address != "" {
		fmt.Fprintln(a.stdout, home.Address)
	}
	fmt.Fprintln(a.stdout, location.MapsLink(*home))
	return nil
}

// origin is the -lat/-lon position, falling back to home.
func (a *app) origin(ctx context.Context, fs *flagSet, cf coordFlags) (models.LocationInfo, error) {
	loc, ok, err := cf.location(fs)
	if err != nil || ok {
		return loc, err
	}
	home, err := a.records.HomeLocation(ctx)
	if err != nil {
		return loc, err
	}
	if home == nil {
		return loc, errNoHome
	}
	return *home, nil
}

func (a *app) nearestLocation(ctx context.Context, args []string) error {
	fs := a.flagSet("locations nearest")
	cf := coordFlagSet(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	from, err := a.origin(ctx, fs, cf)
	if err != nil {
		return err
	}
	places, err := a.records.Locations.List(ctx)
	if err != nil {
		return err
	}
	nearest, meters, ok := location.Nearest(from, places)
	if !ok {
		return errors.New("no saved places yet")
	}
	a.out.Notify(render.Info, "%s is %s away", nearest.Name, render.FormatDistance(meters))
	fmt.Fprintln(a.stdout, location.MapsLink(nearest.Location))
	return nil
}

// guideHome prints walking directions from -lat/-lon to home, or from home to
// a saved place when an id is given.
func (a *app) guideHome(ctx context.Context, args []string) error {
	var ref string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		ref, args = args[0], args[1:]
	}
	fs := a.flagSet("locations guide")
	cf := coordFlagSet(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if ref != "" {
		place, err := a.records.Locations.Resolve(ctx, ref)
		if err != nil {
			return err
		}
		from, err := a.origin(ctx, fs, cf)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, location.DirectionsLink(from, place.Location))
		return nil
	}

	from, ok, err := cf.location(fs)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("current position is required (-lat, -lon)")
	}
	home, err := a.records.HomeLocation(ctx)
	if err != nil {
		return err
	}
	if home == nil {
		return errNoHome
	}
	a.out.Notify(render.Info, "Home is %s away", render.FormatDistance(location.Distance(from, *home)))
	fmt.Fprintln(a.stdout, location.DirectionsLink(from, *home))
	return nil
}

// notifyFamily drafts an email to family with the current position.
func (a *app) notifyFamily(ctx context.Context, args []string) error {
	fs := a.flagSet("locations notify")
	cf := coordFlagSet(fs)
	copyIt := fs.Bool("copy", false, "copy the link to the clipboard")
	if err := fs.Parse(args); err != nil {
		return err
	}
	loc, ok, err := cf.location(fs)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("current position is required (-lat, -lon)")
	}
	emails, err := a.records.FamilyEmails(ctx)
	if err != nil {
		return err
	}
	link, err := share.LocationAlertMailto(emails, loc, a.language(ctx))
	if err != nil {
		return err
	}
	a.copyOrPrint(link, *copyIt)
	return nil
}
