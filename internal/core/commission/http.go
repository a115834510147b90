// Copyright (c) 2026 CoPla. All rights reserved.

package commission

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/copla/copla/internal/platform/request"
	"github.com/copla/copla/internal/platform/respond"
	"github.com/copla/copla/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the card routes on the /users router.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/{username}/commission-card", func(card chi.Router) {
		card.Get("/", handler.getCard)
		card.Post("/", handler.createCard)
		card.Delete("/", handler.deleteCard)

		card.Post("/elements", handler.addElement)
		card.Put("/elements/{elementID}", handler.updateElement)
		card.Delete("/elements/{elementID}", handler.deleteElement)
	})
}

func (handler *Handler) getCard(writer http.ResponseWriter, request *http.Request) {
	card, err := handler.service.GetCard(request.Context(), requestutil.Param(request, "username"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, card)
}

type cardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (handler *Handler) createCard(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input cardRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	card, err := handler.service.CreateCard(request.Context(), claims.Username, input.Title, input.Description)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, card)
}

func (handler *Handler) deleteCard(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteCard(request.Context(), claims.Username); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Commission card deleted successfully")
}

type elementRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Price            *float64 `json:"price"`
	ExampleImageURLs []string `json:"example_image_urls"`
}

func (handler *Handler) addElement(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input elementRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	element := &Element{
		Title:            input.Title,
		Description:      input.Description,
		Price:            input.Price,
		ExampleImageURLs: input.ExampleImageURLs,
	}
	if err := handler.service.AddElement(request.Context(), claims.Username, element); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, element)
}

// decodeElementUpdate keeps JSON key presence so that "price": null clears the price.
func decodeElementUpdate(request *http.Request) (ElementUpdate, error) {
	var raw map[string]json.RawMessage
	if err := requestutil.DecodeJSON(request, &raw); err != nil {
		return ElementUpdate{}, err
	}

	var update ElementUpdate
	fields := []struct {
		key    string
		target any
		seen   *bool
	}{
		{FieldTitle, &update.Title, nil},
		{FieldDescription, &update.Description, nil},
		{FieldPrice, &update.Price, &update.SetPrice},
		{FieldImages, &update.ExampleImageURLs, &update.SetImages},
	}

	for _, field := range fields {
		value, ok := raw[field.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, field.target); err != nil {
			return ElementUpdate{}, validate.RequiredError(field.key, "Invalid value")
		}
		if field.seen != nil {
			*field.seen = true
		}
	}
	return update, nil
}

func (handler *Handler) updateElement(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	elementID, err := requestutil.Int64Param(request, "elementID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	update, err := decodeElementUpdate(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	element, err := handler.service.UpdateElement(request.Context(), claims.Username, elementID, update)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, element)
}

func (handler *Handler) deleteElement(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredOwner(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	elementID, err := requestutil.Int64Param(request, "elementID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteElement(request.Context(), claims.Username, elementID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Message(writer, "Commission card element deleted successfully")
}
