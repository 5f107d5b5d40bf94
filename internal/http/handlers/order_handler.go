package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
	"shopfront/internal/repos"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type OrderHandler struct {
	Order *services.OrderService
}

// Checkout builds the draft order and presents it for shipping input. An
// empty or missing cart is not an error; the user goes back to the catalog.
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	draft, err := h.Order.BeginCheckout(userID(c))
	if err != nil {
		if errors.Is(err, repos.ErrProductNotFound) {
			return notFound(c, "An item in your cart is no longer available")
		}
		applog.Error(c, "checkout.begin.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	if draft == nil {
		return c.Redirect("/")
	}
	total := decimal.Zero
	for _, it := range draft.Items {
		total = total.Add(it.Price.Mul(it.Qty))
	}
	return render(c, "checkout", fiber.Map{"Draft": draft, "Total": total})
}

// Place finalizes the posted draft: shipping address plus the snapshotted
// items carried through the form.
func (h *OrderHandler) Place(c *fiber.Ctx) error {
	ship, ok := parseShipping(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "shipping"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid shipping address")
	}
	draft, ok := parseDraft(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "items"})
		return c.Status(fiber.StatusBadRequest).SendString("invalid order items")
	}
	draft.Shipping = ship

	orderID, err := h.Order.Finalize(c.Context(), userID(c), draft)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrEmptyCart):
		return c.Redirect("/")
	case errors.Is(err, repos.ErrProductNotFound):
		applog.Security(c, "order.place.fail", map[string]any{"reason": "product_gone"})
		return notFound(c, "An item in your order is no longer available")
	case errors.Is(err, services.ErrInvalidDraft):
		return c.Status(fiber.StatusBadRequest).SendString("invalid order items")
	default:
		// transactional failure: fully rolled back, safe to retry
		applog.Error(c, "order.place.fail", err, nil)
		return c.Status(fiber.StatusBadRequest).SendString("Could not place order. Please try again.")
	}

	applog.Audit(c, "order.place", map[string]any{"order_id": orderID})
	return c.Redirect("/order/" + orderID)
}

func (h *OrderHandler) View(c *fiber.Ctx) error {
	oid, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "Order not found")
	}
	detail, err := h.Order.Get(userID(c), oid)
	if err != nil {
		if !errors.Is(err, repos.ErrOrderNotFound) {
			applog.Error(c, "order.view.fail", err, nil)
		}
		return notFound(c, "Order not found")
	}
	return render(c, "order", fiber.Map{"Order": detail.Order, "Items": detail.Items, "Total": detail.Total})
}

func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Order.History(userID(c))
	if err != nil {
		applog.Error(c, "orders.history.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load orders"})
	}
	return render(c, "orders", fiber.Map{"Orders": orders})
}

func parseShipping(c *fiber.Ctx) (domain.ShippingAddress, bool) {
	street, ok1 := validate.Address(c.FormValue("street"))
	city, ok2 := validate.Address(c.FormValue("city"))
	postal, ok3 := validate.Address(c.FormValue("postal"))
	country, ok4 := validate.Address(c.FormValue("country"))
	if !(ok1 && ok2 && ok3 && ok4) {
		return domain.ShippingAddress{}, false
	}
	return domain.ShippingAddress{Street: street, City: city, PostalCode: postal, Country: country}, true
}

// parseDraft rebuilds the draft order from the checkout form's repeated
// hidden fields.
func parseDraft(c *fiber.Ctx) (domain.Order, bool) {
	args := c.Request().PostArgs()
	ids := args.PeekMulti("item_product")
	qtys := args.PeekMulti("item_qty")
	prices := args.PeekMulti("item_price")
	if len(ids) == 0 || len(ids) != len(qtys) || len(ids) != len(prices) {
		return domain.Order{}, false
	}

	var draft domain.Order
	for i := range ids {
		pid, ok := validate.ID(string(ids[i]))
		if !ok {
			return domain.Order{}, false
		}
		qty, err := decimal.NewFromString(string(qtys[i]))
		if err != nil || !qty.IsPositive() {
			return domain.Order{}, false
		}
		price, err := decimal.NewFromString(string(prices[i]))
		if err != nil || price.IsNegative() {
			return domain.Order{}, false
		}
		draft.Items = append(draft.Items, domain.OrderItem{ProductID: pid, Qty: qty, Price: price})
	}
	return draft, true
}
