package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"plaque-payments/internal/client"
	"plaque-payments/internal/credential"
	"plaque-payments/internal/dto"
	"plaque-payments/internal/intent"
	"plaque-payments/internal/middleware"
	"plaque-payments/internal/repository"
	"plaque-payments/internal/service"
)

type PaymentsHandler struct {
	checkout   *service.CheckoutService
	reconciler *service.Reconciler
	log        *zap.Logger
}

func NewPaymentsHandler(checkout *service.CheckoutService, reconciler *service.Reconciler, log *zap.Logger) *PaymentsHandler {
	return &PaymentsHandler{
		checkout:   checkout,
		reconciler: reconciler,
		log:        log,
	}
}

func (h *PaymentsHandler) GetCurrencies(c echo.Context) error {
	ctx := c.Request().Context()

	listing, err := h.checkout.Currencies(ctx, middleware.Session(c))
	if err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, listing)
}

func (h *PaymentsHandler) GetPaymentMethods(c echo.Context) error {
	ctx := c.Request().Context()

	currencyCode := c.QueryParam("currencyCode")
	if currencyCode == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing currencyCode")
	}

	methods, err := h.checkout.Methods(ctx, middleware.Session(c), currencyCode)
	if err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, methods)
}

func (h *PaymentsHandler) Purchase(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	outcome, err := h.checkout.Submit(ctx, middleware.Credential(c), middleware.Session(c), &req)
	if err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, outcome)
}

func (h *PaymentsHandler) GetPurchases(c echo.Context) error {
	ctx := c.Request().Context()

	plaques, err := h.checkout.RefreshPurchases(ctx, middleware.Credential(c))
	if err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    plaques,
	})
}

func (h *PaymentsHandler) GetTotalSpent(c echo.Context) error {
	ctx := c.Request().Context()

	if _, ok := middleware.Credential(c).Token(); !ok {
		return translateError(credential.ErrUnauthenticated)
	}

	total, err := h.checkout.TotalSpent(ctx)
	if err != nil {
		return translateError(err)
	}
	return c.JSON(http.StatusOK, map[string]float64{"totalSpent": total})
}

// PollStatus triggers one reconciliation for a ledgered purchase. The
// response is never an error for poll failures; polling is best-effort
// and the prior state is simply retained.
func (h *PaymentsHandler) PollStatus(c echo.Context) error {
	ctx := c.Request().Context()

	if _, ok := middleware.Credential(c).Token(); !ok {
		return translateError(credential.ErrUnauthenticated)
	}

	plaque, err := h.checkout.FindPlaque(ctx, c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "purchase not found")
	}
	if plaque.ReferenceNumber == "" {
		return echo.NewHTTPError(http.StatusConflict, "purchase has no reference number to poll")
	}

	key := repository.PatchKey{ID: plaque.ID, RemoteID: plaque.RemoteID}
	applied := h.reconciler.Poll(ctx, middleware.Credential(c), key, plaque.ReferenceNumber)

	refreshed := plaque
	if applied {
		if p, err := h.checkout.FindPlaque(ctx, plaque.ID); err == nil {
			refreshed = p
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"applied": applied,
		"plaque":  refreshed,
	})
}

// translateError maps the engine's error taxonomy onto HTTP answers.
// Every failure leaves the caller in a re-triggerable state.
func translateError(err error) error {
	var validationErr *intent.ValidationError
	if errors.As(err, &validationErr) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			"code":    validationErr.Code,
			"message": validationErr.Message,
		})
	}

	if errors.Is(err, credential.ErrUnauthenticated) {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated. Please log in.")
	}

	var dirErr *client.DirectoryUnavailableError
	if errors.As(err, &dirErr) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, map[string]interface{}{
			"message":   "Failed to load payment options. Please try again.",
			"retriable": true,
		})
	}

	var gatewayErr *client.GatewayError
	if errors.As(err, &gatewayErr) {
		message := gatewayErr.Message
		if message == "" {
			message = "Failed to initiate payment. Please try again or contact support."
		}
		return echo.NewHTTPError(http.StatusBadGateway, message)
	}

	if errors.Is(err, client.ErrGatewayUnreachable) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Network error: Unable to connect to payment service")
	}

	return err
}
