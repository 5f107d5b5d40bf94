package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "shopfront/internal/log"
	"shopfront/internal/repos"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(userID(c))
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	if err := h.Cart.Add(userID(c), productID); err != nil {
		if errors.Is(err, repos.ErrProductNotFound) {
			return notFound(c, "This item is no longer available")
		}
		applog.Error(c, "cart.add.fail", err, map[string]any{"product_id": productID})
		return c.Status(fiber.StatusInternalServerError).SendString("could not add to cart")
	}
	applog.Info(c, "cart.add", map[string]any{"product_id": productID})
	return c.Redirect("/cart")
}

func (h *CartHandler) Remove(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	if err := h.Cart.Remove(userID(c), productID); err != nil {
		if errors.Is(err, repos.ErrCartNotFound) {
			return notFound(c, "Cart not found")
		}
		applog.Error(c, "cart.remove.fail", err, map[string]any{"product_id": productID})
		return c.Status(fiber.StatusInternalServerError).SendString("could not update cart")
	}
	return c.Redirect("/cart")
}
