// Copyright (c) 2026 CoPla. All rights reserved.

package coplaapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/copla/copla/internal/client/clienterr"
	"github.com/copla/copla/internal/core/artist"
	"github.com/copla/copla/internal/core/commission"
	"github.com/copla/copla/internal/core/tag"
	"github.com/copla/copla/internal/platform/respond"
	"github.com/copla/copla/internal/social/following"
	"github.com/copla/copla/internal/social/profile"
	"github.com/copla/copla/internal/users/account"
	"github.com/copla/copla/internal/users/auth"
	"github.com/copla/copla/pkg/pagination"
)

// # Auth

// Registration is the body of POST /api/register.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsArtist bool   `json:"is_artist"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, input Registration) (*auth.User, error) {
	var user auth.User
	if err := c.call(ctx, http.MethodPost, "/api/register", nil, input, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates with a username or email and stores the session cookie.
func (c *Client) Login(ctx context.Context, login, password string) (*auth.User, error) {
	var out struct {
		User *auth.User `json:"user"`
	}
	body := map[string]string{"login": login, "password": password}
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// Logout ends the server session. The cookie is cleared by the response.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// # Users

// Me returns the caller's identity. Anonymous callers get an empty username.
func (c *Client) Me(ctx context.Context) (*account.Me, error) {
	var me account.Me
	if err := c.call(ctx, http.MethodGet, "/api/users/me", nil, nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// Users lists accounts one page at a time.
func (c *Client) Users(ctx context.Context, page, limit int) ([]*auth.User, pagination.Meta, error) {
	query := url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}

	result, err := c.do(ctx, http.MethodGet, "/api/users", query, nil)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	var (
		users []*auth.User
		meta  pagination.Meta
	)
	if err := json.Unmarshal(result.Data, &users); err != nil {
		return nil, meta, clienterr.Transport(err)
	}
	if len(result.Meta) > 0 {
		if err := json.Unmarshal(result.Meta, &meta); err != nil {
			return nil, meta, clienterr.Transport(err)
		}
	}
	return users, meta, nil
}

// Profile returns the public profile with social links.
func (c *Client) Profile(ctx context.Context, username string) (*account.Profile, error) {
	var profile account.Profile
	if err := c.call(ctx, http.MethodGet, userPath(username), nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ProfileUpdate carries the editable profile fields. Nil leaves a field as is.
type ProfileUpdate struct {
	Bio            *string `json:"bio,omitempty"`
	ProfilePicPath *string `json:"profile_pic_path,omitempty"`
}

// UpdateProfile edits the caller's own profile.
func (c *Client) UpdateProfile(ctx context.Context, username string, update ProfileUpdate) (*auth.User, error) {
	var user auth.User
	if err := c.call(ctx, http.MethodPatch, userPath(username), nil, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// # Artists

// ArtistQuery narrows the artist list on the server. Nil means no filter.
type ArtistQuery struct {
	Verified           *bool
	OpenForCommissions *bool
}

// Artists lists artists with their lowest price and tags.
func (c *Client) Artists(ctx context.Context, query ArtistQuery) ([]*artist.Artist, error) {
	values := url.Values{}
	if query.Verified != nil {
		values.Set("verified", strconv.FormatBool(*query.Verified))
	}
	if query.OpenForCommissions != nil {
		values.Set("open_for_commissions", strconv.FormatBool(*query.OpenForCommissions))
	}

	var artists []*artist.Artist
	if err := c.call(ctx, http.MethodGet, "/api/users/artists", values, nil, &artists); err != nil {
		return nil, err
	}
	return artists, nil
}

// SetCommissionStatus opens or closes the caller's commissions.
func (c *Client) SetCommissionStatus(ctx context.Context, username string, open bool) (*artist.CommissionStatus, error) {
	var status artist.CommissionStatus
	body := map[string]bool{"is_open": open}
	if err := c.call(ctx, http.MethodPut, userPath(username, "commission-status"), nil, body, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// AddArtistTag attaches a vocabulary tag and returns the server message.
func (c *Client) AddArtistTag(ctx context.Context, username, tagName string) (string, error) {
	var out respond.MessageBody
	body := map[string]string{"tag_name": tagName}
	err := c.call(ctx, http.MethodPost, userPath(username, "tags", "add"), nil, body, &out)
	return out.Message, err
}

// RemoveArtistTag detaches a tag and returns the server message.
func (c *Client) RemoveArtistTag(ctx context.Context, username, tagName string) (string, error) {
	var out respond.MessageBody
	err := c.call(ctx, http.MethodDelete, userPath(username, "tags", url.PathEscape(tagName)), nil, nil, &out)
	return out.Message, err
}

// # Tags

// TagNames returns the active vocabulary.
func (c *Client) TagNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.call(ctx, http.MethodGet, "/api/tags/names", nil, nil, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Tags returns full tag records, optionally for one category.
func (c *Client) Tags(ctx context.Context, category string) ([]*tag.Tag, error) {
	values := url.Values{}
	if category != "" {
		values.Set("category", category)
	}

	var tags []*tag.Tag
	if err := c.call(ctx, http.MethodGet, "/api/tags/all", values, nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag adds a vocabulary entry. Admin only.
func (c *Client) CreateTag(ctx context.Context, name, description, category string) (*tag.Tag, error) {
	var created tag.Tag
	body := map[string]string{"name": name, "description": description, "category": category}
	if err := c.call(ctx, http.MethodPost, "/api/tags", nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// # Commission Cards

// CommissionCard returns an artist's card with its elements.
func (c *Client) CommissionCard(ctx context.Context, username string) (*commission.Card, error) {
	var card commission.Card
	if err := c.call(ctx, http.MethodGet, userPath(username, "commission-card"), nil, nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// CreateCommissionCard creates the caller's card.
func (c *Client) CreateCommissionCard(ctx context.Context, username, title, description string) (*commission.Card, error) {
	var card commission.Card
	body := map[string]string{"title": title, "description": description}
	if err := c.call(ctx, http.MethodPost, userPath(username, "commission-card"), nil, body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// DeleteCommissionCard removes the caller's card and its elements.
func (c *Client) DeleteCommissionCard(ctx context.Context, username string) error {
	return c.call(ctx, http.MethodDelete, userPath(username, "commission-card"), nil, nil, nil)
}

// ElementInput is the body of a new card element.
type ElementInput struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Price            *float64 `json:"price"`
	ExampleImageURLs []string `json:"example_image_urls"`
}

// AddCommissionElement appends an element to the caller's card.
func (c *Client) AddCommissionElement(ctx context.Context, username string, input ElementInput) (*commission.Element, error) {
	var element commission.Element
	if err := c.call(ctx, http.MethodPost, userPath(username, "commission-card", "elements"), nil, input, &element); err != nil {
		return nil, err
	}
	return &element, nil
}

// UpdateCommissionElement sends a partial update. Only keys present in
// fields are changed; a nil price clears it.
func (c *Client) UpdateCommissionElement(ctx context.Context, username string, elementID int64, fields map[string]any) (*commission.Element, error) {
	var element commission.Element
	path := userPath(username, "commission-card", "elements", strconv.FormatInt(elementID, 10))
	if err := c.call(ctx, http.MethodPut, path, nil, fields, &element); err != nil {
		return nil, err
	}
	return &element, nil
}

// DeleteCommissionElement removes one element.
func (c *Client) DeleteCommissionElement(ctx context.Context, username string, elementID int64) error {
	path := userPath(username, "commission-card", "elements", strconv.FormatInt(elementID, 10))
	return c.call(ctx, http.MethodDelete, path, nil, nil, nil)
}

// # Social

// AddBluesky records an unverified Bluesky handle on the caller's profile.
func (c *Client) AddBluesky(ctx context.Context, username, handle string) (*profile.Profile, error) {
	var out struct {
		Message string           `json:"message"`
		Profile *profile.Profile `json:"profile"`
	}
	body := map[string]string{"username": handle}
	if err := c.call(ctx, http.MethodPost, userPath(username, "social", "bluesky"), nil, body, &out); err != nil {
		return nil, err
	}
	return out.Profile, nil
}

// UnlinkSocial removes a linked account from the caller's profile.
func (c *Client) UnlinkSocial(ctx context.Context, username, platform, accountName string) error {
	path := userPath(username, "social", url.PathEscape(platform), url.PathEscape(accountName))
	return c.call(ctx, http.MethodDelete, path, nil, nil, nil)
}

// FollowingEdges lists the caller's synced follow edges.
func (c *Client) FollowingEdges(ctx context.Context, username string, openOnly bool) ([]*following.Edge, error) {
	values := url.Values{}
	if openOnly {
		values.Set("open_only", "true")
	}

	var edges []*following.Edge
	if err := c.call(ctx, http.MethodGet, userPath(username, "following"), values, nil, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}
