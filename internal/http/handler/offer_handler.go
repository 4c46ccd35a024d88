package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ecaro09/tasko-sub000/internal/marketplace"
)

// OfferHandler exposes the offer resolution commands.
type OfferHandler struct {
	offers *marketplace.OfferService
}

func NewOfferHandler(offers *marketplace.OfferService) *OfferHandler {
	return &OfferHandler{offers: offers}
}

// Add places a bid on a posted task.
func (h *OfferHandler) Add(c echo.Context) error {
	taskerID, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in marketplace.AddOfferInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in.TaskID = c.Param("id")
	offer, err := h.offers.AddOffer(c.Request().Context(), taskerID, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, offer)
}

// Accept resolves competing offers: the target offer wins, siblings are
// rejected, the task is assigned.
func (h *OfferHandler) Accept(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req struct {
		TaskID string `json:"task_id"`
	}
	if err := c.Bind(&req); err != nil || req.TaskID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "task_id is required"})
	}
	taskerID, err := h.offers.AcceptOffer(c.Request().Context(), c.Param("id"), req.TaskID, actor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasker_id": taskerID})
}

// Reject turns down a pending offer (client only).
func (h *OfferHandler) Reject(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.offers.RejectOffer(c.Request().Context(), c.Param("id"), actor); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "offer rejected"})
}

// Withdraw pulls a pending offer (bidding tasker only).
func (h *OfferHandler) Withdraw(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.offers.WithdrawOffer(c.Request().Context(), c.Param("id"), actor); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "offer withdrawn"})
}

// ListForTask returns every offer on a task.
func (h *OfferHandler) ListForTask(c echo.Context) error {
	if _, ok := actorID(c); !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	offers, err := h.offers.ListOffers(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"offers": offers})
}
