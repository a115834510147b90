// Copyright (c) 2026 CoPla. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/copla/copla/internal/client/directory"
	"github.com/copla/copla/internal/client/prefs"
	"github.com/copla/copla/internal/core/tag"
	"github.com/copla/copla/internal/social/following"
	"github.com/copla/copla/pkg/slice"
)

// renderDirectory draws the visible artists as cards under a count line.
func renderDirectory(theme prefs.Theme, snapshot directory.Snapshot) string {
	var out strings.Builder

	fmt.Fprintf(&out, "%s\n", theme.Muted.Render(fmt.Sprintf("Showing %d of %d artists", len(snapshot.Visible), snapshot.Total)))
	if len(snapshot.Visible) == 0 {
		fmt.Fprintf(&out, "%s\n", theme.Muted.Render("No artists match these filters."))
		return out.String()
	}

	for _, record := range snapshot.Visible {
		fmt.Fprintf(&out, "%s\n", theme.Card.Render(renderArtist(theme, record)))
	}
	return out.String()
}

func renderArtist(theme prefs.Theme, record directory.ArtistRecord) string {
	name := theme.Title.Render(record.Name)
	if record.Verified {
		name += " " + theme.Success.Render("✓")
	}

	status := theme.Closed.Render("Closed")
	if record.IsOpenForCommissions {
		status = theme.Open.Render("Open")
	}

	price := theme.Muted.Render("No pricing yet")
	if record.LowestPrice > 0 {
		price = theme.Label.Render(fmt.Sprintf("From $%.2f", record.LowestPrice))
	}

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, name, "  ", status),
		price,
	}
	if bio := strings.TrimSpace(record.Bio); bio != "" {
		lines = append(lines, theme.Muted.Render(bio))
	}
	if len(record.Tags) > 0 {
		lines = append(lines, renderTagList(theme, record.Tags))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderTags lists tags grouped under their category in input order.
func renderTags(theme prefs.Theme, tags []*tag.Tag) string {
	if len(tags) == 0 {
		return theme.Muted.Render("No tags.") + "\n"
	}

	var (
		out        strings.Builder
		categories []string
		byCategory = map[string][]string{}
	)
	for _, entry := range tags {
		if _, seen := byCategory[entry.Category]; !seen {
			categories = append(categories, entry.Category)
		}
		byCategory[entry.Category] = append(byCategory[entry.Category], entry.Name)
	}

	for _, category := range categories {
		fmt.Fprintf(&out, "%s\n", theme.Title.Render(category))
		fmt.Fprintf(&out, "%s\n", renderTagList(theme, byCategory[category]))
	}
	return out.String()
}

// renderFollowing lists follow edges, marking the ones linked to CoPla users.
func renderFollowing(theme prefs.Theme, edges []*following.Edge) string {
	if len(edges) == 0 {
		return theme.Muted.Render("No synced follows. Run copla bluesky sync.") + "\n"
	}

	var out strings.Builder
	for _, edge := range edges {
		line := theme.Label.Render("@" + edge.BlueskyHandle)
		if edge.BlueskyDisplayName != "" && edge.BlueskyDisplayName != edge.BlueskyHandle {
			line += " " + theme.Muted.Render(edge.BlueskyDisplayName)
		}
		if edge.IsLinked && edge.CoplaUser != nil {
			line += "  " + theme.Title.Render("→ "+edge.CoplaUser.Name)
			if edge.IsOpenForCommissions {
				line += " " + theme.Open.Render("Open")
			}
		}
		fmt.Fprintf(&out, "%s\n", line)
	}
	return out.String()
}

func renderTagList(theme prefs.Theme, names []string) string {
	return strings.Join(slice.Map(names, func(name string) string { return theme.Tag.Render(name) }), "")
}
