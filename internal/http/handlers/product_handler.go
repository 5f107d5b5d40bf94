package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"shopfront/internal/domain"
	applog "shopfront/internal/log"
	"shopfront/internal/repos"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	prods, err := h.Catalog.List(page, 12)
	if err != nil {
		applog.Error(c, "products.list.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load products"})
	}
	return render(c, "products", fiber.Map{"Products": prods, "Page": page})
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "This item is no longer available")
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return notFound(c, "This item is no longer available")
	}
	return render(c, "product", fiber.Map{"P": p})
}

func (h *ProductHandler) NewForm(c *fiber.Ctx) error {
	return render(c, "product_form", fiber.Map{"P": domain.Product{}, "Err": ""})
}

func (h *ProductHandler) EditForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "This item is no longer available")
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return notFound(c, "This item is no longer available")
	}
	return render(c, "product_form", fiber.Map{"P": p, "Err": ""})
}

func (h *ProductHandler) parseForm(c *fiber.Ctx) (domain.Product, string) {
	name, ok := validate.ProductName(c.FormValue("name"))
	if !ok {
		return domain.Product{}, "Name must be 1-100 characters"
	}
	price, ok := validate.Price(c.FormValue("price"))
	if !ok {
		return domain.Product{}, "Price must be a positive amount"
	}
	return domain.Product{
		Name:        name,
		Description: c.FormValue("description"),
		Price:       price,
		ImageURL:    c.FormValue("imageUrl"),
		IsFeatured:  c.FormValue("featured") == "on",
	}, ""
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	p, msg := h.parseForm(c)
	if msg != "" {
		return c.Status(fiber.StatusBadRequest).Render("product_form", fiber.Map{"P": p, "Err": msg})
	}
	created, err := h.Catalog.Create(p)
	if err != nil {
		applog.Error(c, "product.create.fail", err, nil)
		return c.Status(fiber.StatusBadRequest).Render("product_form", fiber.Map{"P": p, "Err": "Could not save product"})
	}
	applog.Audit(c, "product.create", map[string]any{"product_id": created.ID})
	return c.Redirect("/product/" + created.ID)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "This item is no longer available")
	}
	p, msg := h.parseForm(c)
	if msg != "" {
		p.ID = id
		return c.Status(fiber.StatusBadRequest).Render("product_form", fiber.Map{"P": p, "Err": msg})
	}
	p.ID = id
	if err := h.Catalog.Update(p); err != nil {
		if errors.Is(err, repos.ErrProductNotFound) {
			return notFound(c, "This item is no longer available")
		}
		applog.Error(c, "product.update.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusBadRequest).Render("product_form", fiber.Map{"P": p, "Err": "Could not save product"})
	}
	applog.Audit(c, "product.update", map[string]any{"product_id": id})
	return c.Redirect("/product/" + id)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, "This item is no longer available")
	}
	if err := h.Catalog.Delete(id); err != nil {
		if errors.Is(err, repos.ErrProductInUse) {
			applog.Security(c, "product.delete.blocked", map[string]any{"product_id": id})
			return c.Status(fiber.StatusConflict).SendString("product appears on existing orders")
		}
		if errors.Is(err, repos.ErrProductNotFound) {
			return notFound(c, "This item is no longer available")
		}
		applog.Error(c, "product.delete.fail", err, map[string]any{"product_id": id})
		return c.Status(fiber.StatusInternalServerError).SendString("could not delete product")
	}
	applog.Audit(c, "product.delete", map[string]any{"product_id": id})
	return c.Redirect("/products")
}

// ---------- JSON API ----------

func (h *ProductHandler) APIList(c *fiber.Ctx) error {
	var (
		prods []domain.Product
		err   error
	)
	if c.Query("featured") == "1" {
		prods, err = h.Catalog.Featured()
	} else {
		prods, err = h.Catalog.List(c.QueryInt("page", 1), c.QueryInt("pageSize", 12))
	}
	if err != nil {
		applog.Error(c, "api.products.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not load products"})
	}
	return c.JSON(prods)
}

func (h *ProductHandler) APIGet(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	p, err := h.Catalog.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	return c.JSON(p)
}
