package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/artemivanov/shortlink/internal/entity"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

func handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "pong")
}

type shortLinkUseCase interface {
	ShortenURL(ctx context.Context, originalURL string) (*entity.ShortLink, error)
	GetShortLink(ctx context.Context, shortCode string) (*entity.ShortLink, error)
	ResolveShortCode(ctx context.Context, shortCode string) (*entity.ShortLink, error)
	ModifyURL(ctx context.Context, shortCode, originalURL string) (*entity.ShortLink, error)
	DeleteShortLink(ctx context.Context, shortCode string) error
}

type shortLinkHandler struct {
	useCase  shortLinkUseCase
	validate *validator.Validate
}

func newShortLinkHandler(useCase shortLinkUseCase, validate *validator.Validate) *shortLinkHandler {
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &shortLinkHandler{
		useCase:  useCase,
		validate: validate,
	}
}

func (h *shortLinkHandler) shortenURL(w http.ResponseWriter, r *http.Request) {
	var req shortLinkRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	link, err := h.useCase.ShortenURL(r.Context(), req.OriginalURL)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidURL) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidOriginalURLResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toShortLinkResponse(link))
}

func (h *shortLinkHandler) getShortLink(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	link, err := h.useCase.GetShortLink(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, linkNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toShortLinkResponse(link))
}

func (h *shortLinkHandler) modifyURL(w http.ResponseWriter, r *http.Request) {
	var req shortLinkRequest

	if err := render.DecodeJSON(r.Body, &req); err != nil {
		if errors.Is(err, io.EOF) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, emptyRequestBodyResponse)
			return
		}

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, invalidRequestBodyResponse)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, validationErrorResponse(err))
		return
	}

	shortCode := chi.URLParam(r, "shortCode")

	link, err := h.useCase.ModifyURL(r.Context(), shortCode, req.OriginalURL)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrInvalidURL):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, invalidOriginalURLResponse)
		case errors.Is(err, entity.ErrLinkNotFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, linkNotFoundResponse)
		default:
			httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, serverErrorResponse)
		}
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toShortLinkResponse(link))
}

func (h *shortLinkHandler) deleteShortLink(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	err := h.useCase.DeleteShortLink(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, linkNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *shortLinkHandler) getLinkStats(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	link, err := h.useCase.GetShortLink(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, linkNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, toLinkStatsResponse(link))
}

// redirectShortCode serves the public short links. Resolving through the use
// case bumps the access counter before the client is redirected.
func (h *shortLinkHandler) redirectShortCode(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")

	link, err := h.useCase.ResolveShortCode(r.Context(), shortCode)
	if err != nil {
		if errors.Is(err, entity.ErrLinkNotFound) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, linkNotFoundResponse)
			return
		}

		httplog.LogEntrySetField(r.Context(), "err", slog.AnyValue(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, serverErrorResponse)
		return
	}

	http.Redirect(w, r, link.OriginalURL, http.StatusTemporaryRedirect)
}
