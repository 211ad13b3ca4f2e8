package handler

import (
	"net/http"

	"shop/internal/config"
	"shop/internal/middleware"
	"shop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	e.POST("/auth/register", h.Register)
	e.POST("/auth/login", h.Login)

	me := e.Group("/auth")
	me.Use(middleware.AuthJWT(cfg))
	me.GET("/me", h.Me)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req usecase.AuthRegisterRequest
	if err := c.Bind(&req); err != nil {
		return authWriteUsecaseError(c, usecase.ErrValidation)
	}

	out, err := h.uc.Register(c.Request().Context(), req)
	if err != nil {
		return authWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req usecase.AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		return authWriteUsecaseError(c, usecase.ErrValidation)
	}

	// A guest token sent along gets that cart merged into the account.
	guestToken := c.Request().Header.Get(GuestTokenHeader)

	out, err := h.uc.Login(c.Request().Context(), req, guestToken)
	if err != nil {
		return authWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return authWriteUsecaseError(c, usecase.ErrUnauthorized)
	}

	out, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return authWriteUsecaseError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func authWriteUsecaseError(c echo.Context, err error) error {
	switch err {
	case usecase.ErrValidation:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation error"})
	case usecase.ErrUnauthorized:
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case usecase.ErrForbidden:
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case usecase.ErrConflict:
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
