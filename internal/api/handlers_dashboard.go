package api

import "github.com/gofiber/fiber/v2"

func (handler *Handler) Dashboard(c *fiber.Ctx) error {
	user, ok, err := handler.currentUserOrUnauthorized(c)
	if !ok {
		return err
	}

	dashboard, err := handler.dashboardService.BuildDashboard(user.ID, handler.today())
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	return c.JSON(handler.newDashboardView(currentLanguage(c), dashboard))
}
