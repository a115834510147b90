// Copyright (c) 2026 CoPla. All rights reserved.

package commission_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copla/copla/internal/core/commission"
	"github.com/copla/copla/internal/platform/apperr"
	"github.com/copla/copla/internal/platform/ctxutil"
	"github.com/copla/copla/internal/platform/sec"
	"github.com/copla/copla/pkg/pointer"
)

type artistsByName map[string]int64

func (a artistsByName) FindArtistID(_ context.Context, username string) (int64, error) {
	if id, ok := a[username]; ok {
		return id, nil
	}
	return 0, apperr.NotFound("Artist")
}

type memoryCards struct {
	cards  map[int64]*commission.Card
	nextID int64
}

func (m *memoryCards) FindCard(_ context.Context, artistID int64) (*commission.Card, error) {
	if card, ok := m.cards[artistID]; ok {
		return card, nil
	}
	return nil, apperr.NotFound("Commission card")
}

func (m *memoryCards) CreateCard(_ context.Context, card *commission.Card) error {
	if _, ok := m.cards[card.ArtistID]; ok {
		return apperr.Conflict("Commission card already exists")
	}
	m.nextID++
	card.ID = m.nextID
	m.cards[card.ArtistID] = card
	return nil
}

func (m *memoryCards) DeleteCard(_ context.Context, artistID int64) error {
	delete(m.cards, artistID)
	return nil
}

func (m *memoryCards) byID(cardID int64) *commission.Card {
	for _, card := range m.cards {
		if card.ID == cardID {
			return card
		}
	}
	return nil
}

func (m *memoryCards) AddElement(_ context.Context, cardID int64, element *commission.Element) error {
	card := m.byID(cardID)
	m.nextID++
	element.ID = m.nextID
	element.Position = len(card.Elements)
	card.Elements = append(card.Elements, element)
	return nil
}

func (m *memoryCards) FindElement(_ context.Context, cardID, elementID int64) (*commission.Element, error) {
	for _, element := range m.byID(cardID).Elements {
		if element.ID == elementID {
			copied := *element
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Commission card element")
}

func (m *memoryCards) UpdateElement(_ context.Context, cardID int64, element *commission.Element) error {
	card := m.byID(cardID)
	for i, existing := range card.Elements {
		if existing.ID == element.ID {
			card.Elements[i] = element
		}
	}
	return nil
}

func (m *memoryCards) DeleteElement(_ context.Context, cardID, elementID int64) (bool, error) {
	card := m.byID(cardID)
	for i, existing := range card.Elements {
		if existing.ID == elementID {
			card.Elements = append(card.Elements[:i], card.Elements[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func newService() (*commission.Service, *memoryCards) {
	repo := &memoryCards{cards: map[int64]*commission.Card{}}
	artists := artistsByName{"ana": 1, "cy": 3}
	return commission.NewService(artists, repo, slog.New(slog.NewJSONHandler(io.Discard, nil))), repo
}

/*
TestService_OneCardPerArtist rejects a second card with the documented message.
*/
func TestService_OneCardPerArtist(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	card, err := service.CreateCard(ctx, "ana", " Sketches ", "")
	require.NoError(t, err)
	assert.Equal(t, "Sketches", card.Title)
	assert.NotNil(t, card.Elements)

	_, err = service.CreateCard(ctx, "ana", "Again", "")
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 409, appErr.HTTPStatus)
	assert.Equal(t, "Artist already has a commission card. Use PUT to update or DELETE first.", appErr.Message)

	_, err = service.CreateCard(ctx, "nobody", "", "")
	assert.Equal(t, "Artist not found", apperr.As(err).Message)
}

/*
TestService_AddElement validates required text and non-negative prices.
*/
func TestService_AddElement(t *testing.T) {
	service, repo := newService()
	ctx := context.Background()

	err := service.AddElement(ctx, "ana", &commission.Element{Title: "Bust", Description: "Head and shoulders"})
	assert.Equal(t, "Commission card not found", apperr.As(err).Message)

	_, err = service.CreateCard(ctx, "ana", "Menu", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		element commission.Element
		wantErr bool
	}{
		{"priced", commission.Element{Title: "Bust", Description: "Head", Price: pointer.To(40.0)}, false},
		{"ask_price", commission.Element{Title: "Mural", Description: "Wall"}, false},
		{"free", commission.Element{Title: "Doodle", Description: "Tiny", Price: pointer.To(0.0)}, false},
		{"missing_title", commission.Element{Title: "  ", Description: "Head"}, true},
		{"missing_description", commission.Element{Title: "Bust"}, true},
		{"negative_price", commission.Element{Title: "Bust", Description: "Head", Price: pointer.To(-1.0)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			element := tt.element
			err := service.AddElement(ctx, "ana", &element)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, element.ID)
			assert.NotNil(t, element.ExampleImageURLs)
		})
	}

	assert.Len(t, repo.cards[1].Elements, 3)
}

func request(t *testing.T, router http.Handler, method, target, body string) (int, map[string]any) {
	t.Helper()
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, target, strings.NewReader(body)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder.Code, decoded
}

/*
TestHandler_UpdateElement distinguishes an absent price from an explicit null.
*/
func TestHandler_UpdateElement(t *testing.T) {
	service, repo := newService()
	ctx := context.Background()
	_, err := service.CreateCard(ctx, "ana", "Menu", "")
	require.NoError(t, err)
	element := &commission.Element{Title: "Bust", Description: "Head", Price: pointer.To(40.0)}
	require.NoError(t, service.AddElement(ctx, "ana", element))

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &sec.AuthClaims{UserID: 1, Username: "ana", Role: string(sec.RoleArtist)}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithAuthUser(r.Context(), claims)))
		})
	})
	router.Route("/api/users", commission.NewHandler(service).RegisterRoutes)

	target := "/api/users/ana/commission-card/elements/" + strconv.FormatInt(element.ID, 10)

	code, _ := request(t, router, http.MethodPut, target, `{"title":"Bust+"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 40.0, *repo.cards[1].Elements[0].Price)
	assert.Equal(t, "Bust+", repo.cards[1].Elements[0].Title)

	code, _ = request(t, router, http.MethodPut, target, `{"price":null}`)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, repo.cards[1].Elements[0].Price)

	code, _ = request(t, router, http.MethodPut, target, `{"price":"cheap"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body := request(t, router, http.MethodDelete, "/api/users/ana/commission-card/elements/999", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Commission card element not found", body["error"])

	code, _ = request(t, router, http.MethodPost, "/api/users/cy/commission-card", `{}`)
	assert.Equal(t, http.StatusForbidden, code)
}
