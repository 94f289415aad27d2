package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Response envelopes mirror the platform-wide contract: every success is
// {success, message, data}, every list adds a count, every error collapses
// to {success:false, message} at the error-handler boundary.

type successEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type listEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int64  `json:"count"`
	Data    any    `json:"data"`
}

func successResponse(c echo.Context, data any, message string, status ...int) error {
	code := http.StatusOK
	if len(status) > 0 {
		code = status[0]
	}
	if message == "" {
		message = "success"
	}
	return c.JSON(code, successEnvelope{Success: true, Message: message, Data: data})
}

func listResponse(c echo.Context, data any, count int64) error {
	return c.JSON(http.StatusOK, listEnvelope{Success: true, Message: "success", Count: count, Data: data})
}
