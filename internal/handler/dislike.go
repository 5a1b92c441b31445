package handler

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/bericyb/dislinkedIn/internal/middleware"
	"github.com/bericyb/dislinkedIn/internal/model"
	"github.com/bericyb/dislinkedIn/internal/repository"
)

// DislikeHandler serves the counter table API: a PostgREST-style single-table
// surface the extension's remote store client speaks natively, so a
// self-hosted counterd is a drop-in replacement for the hosted project.
type DislikeHandler struct {
	store repository.RowStore
}

func NewDislikeHandler(store repository.RowStore) *DislikeHandler {
	return &DislikeHandler{store: store}
}

// Get handles GET /post_dislikes and GET /post_dislikes?post_urn=eq.<urn>.
// The response is always an array of rows; a filtered miss is an empty array,
// not an error.
func (h *DislikeHandler) Get(c fiber.Ctx) error {
	raw := fiber.Query[string](c, "post_urn")
	if raw == "" {
		return h.list(c)
	}

	urn, errMsg := urnFromFilter(raw)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FILTER", errMsg)
	}

	rec, err := h.store.Get(c.Context(), urn)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON([]model.DislikeRecord{})
	}
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read dislike record")
	}
	return c.JSON([]model.DislikeRecord{*rec})
}

func (h *DislikeHandler) list(c fiber.Ctx) error {
	records, err := h.store.List(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list dislike records")
	}
	if records == nil {
		records = []model.DislikeRecord{}
	}

	if limitStr := fiber.Query[string](c, "limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_PARAM", "limit must be a non-negative integer")
		}
		if limit < len(records) {
			records = records[:limit]
		}
	}

	return c.JSON(records)
}

// Insert handles POST /post_dislikes. A duplicate URN yields 409 so the
// caller can recover by incrementing instead.
func (h *DislikeHandler) Insert(c fiber.Ctx) error {
	var payload model.InsertPayload
	if err := c.Bind().JSON(&payload); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	urn, errMsg := middleware.ValidatePostURN(payload.PostURN)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	count := payload.DislikeCount
	if count == 0 {
		count = 1
	}
	if errMsg := middleware.ValidateCount(count); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	rec, err := h.store.Insert(c.Context(), urn, count)
	if errors.Is(err, repository.ErrConflict) {
		return middleware.ErrorResponse(c, fiber.StatusConflict, "CONFLICT", "A dislike record for this post_urn already exists")
	}
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create dislike record")
	}

	return c.Status(fiber.StatusCreated).JSON([]model.DislikeRecord{*rec})
}

// Update handles PATCH /post_dislikes?post_urn=eq.<urn>. Patching an absent
// row affects zero rows and still succeeds, matching the table semantics.
func (h *DislikeHandler) Update(c fiber.Ctx) error {
	raw := fiber.Query[string](c, "post_urn")
	if raw == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FILTER", "post_urn=eq.<urn> filter is required")
	}
	urn, errMsg := urnFromFilter(raw)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FILTER", errMsg)
	}

	var payload model.UpdatePayload
	if err := c.Bind().JSON(&payload); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}
	if errMsg := middleware.ValidateCount(payload.DislikeCount); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	updatedAt := payload.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	if _, err := h.store.UpdateCount(c.Context(), urn, payload.DislikeCount, updatedAt); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update dislike record")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete handles DELETE /post_dislikes?post_urn=eq.<urn>. Deleting an absent
// row is a no-op.
func (h *DislikeHandler) Delete(c fiber.Ctx) error {
	raw := fiber.Query[string](c, "post_urn")
	if raw == "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "MISSING_FILTER", "post_urn=eq.<urn> filter is required")
	}
	urn, errMsg := urnFromFilter(raw)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FILTER", errMsg)
	}

	if err := h.store.Delete(c.Context(), urn); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete dislike record")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// urnFromFilter unpacks a PostgREST-style "eq.<urn>" filter value.
func urnFromFilter(raw string) (string, string) {
	if !strings.HasPrefix(raw, "eq.") {
		return "", "only the eq. filter operator is supported"
	}
	return middleware.ValidatePostURN(strings.TrimPrefix(raw, "eq."))
}
