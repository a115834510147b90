// Copyright (c) 2026 CoPla. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/copla/copla/internal/client/clienterr"
	"github.com/copla/copla/internal/client/directory"
	"github.com/copla/copla/internal/client/prefs"
	"github.com/copla/copla/pkg/query"
)

// directoryFlags are the artists command flags, applied to a FilterState.
type directoryFlags struct {
	search    string
	minPrice  int
	maxPrice  int
	status    []string
	tags      string
	verified  bool
	following bool
}

// validate rejects --status values the directory cannot filter on.
func (f directoryFlags) validate() error {
	for _, status := range f.status {
		switch directory.Availability(status) {
		case directory.AvailabilityOpen, directory.AvailabilityBusy, directory.AvailabilityClosed:
		default:
			return clienterr.New(clienterr.Validation, "Unknown status %q: use open, busy or closed", status)
		}
	}
	return nil
}

// apply mutates filters in the order a user would set them on the page.
func (f directoryFlags) apply(filters *directory.FilterState) {
	filters.SetSearchTerm(f.search)
	filters.SetPriceMax(f.maxPrice)
	filters.SetPriceMin(f.minPrice)
	for _, status := range f.status {
		filters.ToggleAvailability(directory.Availability(status))
	}
	for _, tag := range query.StringSlice(f.tags) {
		filters.AddCustomTag(tag)
	}
	filters.SetVerifiedOnly(f.verified)
	filters.SetFollowingOnly(f.following)
}

func newArtistsCommand(app *app) *cobra.Command {
	var flags directoryFlags

	cmd := &cobra.Command{
		Use:   "artists",
		Short: "List artists matching the given filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.validate(); err != nil {
				return err
			}

			view := directory.NewView(cmd.Context(), app.api, app.api, app.logger)
			defer view.Close()

			if err := view.Load(cmd.Context()); err != nil {
				return err
			}
			view.Update(flags.apply)

			snapshot := view.Snapshot()
			if snapshot.ArtistsError != "" {
				return clienterr.New(clienterr.Network, "%s", snapshot.ArtistsError)
			}
			if snapshot.Filters.FollowingOnly && snapshot.Viewer == "" {
				app.printf("%s\n", app.theme().Muted.Render("Log in to filter by artists you follow."))
			}

			app.printf("%s", renderDirectory(app.theme(), snapshot))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.search, "search", "s", "", "match name or bio, case-insensitive")
	cmd.Flags().IntVar(&flags.minPrice, "min", 0, "lowest starting price")
	cmd.Flags().IntVar(&flags.maxPrice, "max", directory.PriceCeiling, "highest starting price; the ceiling means no limit")
	cmd.Flags().StringSliceVar(&flags.status, "status", nil, "commission status: open, busy or closed")
	cmd.Flags().StringVarP(&flags.tags, "tags", "t", "", "comma-separated tags, any may match")
	cmd.Flags().BoolVar(&flags.verified, "verified", false, "only verified artists")
	cmd.Flags().BoolVar(&flags.following, "following", false, "only artists you follow on Bluesky")
	return cmd
}

func newTagsCommand(app *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tag vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tags, err := app.api.Tags(cmd.Context(), category)
			if err != nil {
				return err
			}
			app.printf("%s", renderTags(app.theme(), tags))
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "only tags of this category")
	return cmd
}

func newFollowingCommand(app *app) *cobra.Command {
	var openOnly bool

	cmd := &cobra.Command{
		Use:   "following",
		Short: "List your synced Bluesky follows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, err := app.currentUsername(cmd.Context())
			if err != nil {
				return err
			}

			edges, err := app.api.FollowingEdges(cmd.Context(), username, openOnly)
			if err != nil {
				return err
			}
			app.printf("%s", renderFollowing(app.theme(), edges))
			return nil
		},
	}

	cmd.Flags().BoolVar(&openOnly, "open-only", false, "only linked artists open for commissions")
	return cmd
}

func newThemeCommand(app *app) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Set or toggle the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(prefs.ModeLight), string(prefs.ModeDark)},
		RunE: func(_ *cobra.Command, args []string) error {
			next := app.prefs.Toggle()
			if len(args) == 1 {
				mode, err := prefs.ParseMode(args[0])
				if err != nil {
					return err
				}
				next = prefs.New(mode, nil)
			}

			// Reload so flag overrides are not written back.
			stored, err := loadConfig(app.configPath)
			if err != nil {
				return err
			}
			stored.Theme = next.Mode
			if err := stored.save(app.configPath); err != nil {
				return err
			}

			app.prefs = next
			app.printf("%s\n", app.theme().Title.Render("Theme set to "+string(next.Mode)))
			return nil
		},
	}
}
