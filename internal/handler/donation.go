package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lozynskaa/CityScape-diplom-sub000/internal/dto"
	"github.com/lozynskaa/CityScape-diplom-sub000/internal/service"
)

type DonationHandler struct {
	donationService service.DonationService
}

func NewDonationHandler(donationService service.DonationService) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
	}
}

func (h *DonationHandler) Initiate(c echo.Context) error {
	ctx := c.Request().Context()

	userID, _ := c.Get("user_id").(string)

	var req dto.InitiateDonationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.donationService.Initiate(ctx, userID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *DonationHandler) BraintreeToken(c echo.Context) error {
	token, err := h.donationService.BraintreeClientToken(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"client_token": token,
	})
}

func (h *DonationHandler) HandleSuccess(c echo.Context) error {
	donationID := c.QueryParam("donation_id")
	if donationID == "" {
		return c.String(http.StatusBadRequest, "missing donation id")
	}

	html := `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>Donation Processing</title>
		<style>
			body {
				font-family: Arial, sans-serif;
				text-align: center;
				margin-top: 80px;
			}
		</style>
	</head>
	<body>
		<h2>Thank you!</h2>
		<p>Your payment was approved. We will record your donation as soon as the payment provider confirms it.</p>
	</body>
	</html>
	`

	return c.HTML(http.StatusOK, html)
}

func (h *DonationHandler) HandleFailure(c echo.Context) error {
	html := `
	<!DOCTYPE html>
	<html>
	<head>
		<meta charset="utf-8">
		<title>Donation Failed</title>
		<style>
			body {
				font-family: Arial, sans-serif;
				text-align: center;
				margin-top: 80px;
			}
		</style>
	</head>
	<body>
		<h2>Payment not completed</h2>
		<p>Your payment did not go through. No money was taken; you can try again from the event page.</p>
	</body>
	</html>
	`

	return c.HTML(http.StatusOK, html)
}
