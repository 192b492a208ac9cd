package controllers

import (
	"encoding/json"

	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/apperr"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

type ProductController struct {
	service *services.ProductService
}

func NewProductController(service *services.ProductService) *ProductController {
	return &ProductController{service: service}
}

func (pc *ProductController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.service.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(p)
}

// BulkStore accepts a bare JSON array of products.
func (pc *ProductController) BulkStore(c *ctx.Context) {
	body, err := c.Body()
	if err != nil {
		c.Fail(apperr.Validation("Invalid or empty product list"))
		return
	}
	var ins []services.ProductInput
	if err := json.Unmarshal(body, &ins); err != nil {
		c.Fail(apperr.Validation("Invalid or empty product list"))
		return
	}
	ps, err := pc.service.BulkCreate(c.Context(), ins)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(ps)
}

func (pc *ProductController) Index(c *ctx.Context) {
	ps, err := pc.service.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(ps)
}

func (pc *ProductController) Show(c *ctx.Context) {
	p, err := pc.service.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

func (pc *ProductController) Update(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := pc.service.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

func (pc *ProductController) Destroy(c *ctx.Context) {
	p, err := pc.service.Delete(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Product deleted successfully", p)
}

func (pc *ProductController) SearchByName(c *ctx.Context) {
	ps, err := pc.service.SearchByName(c.Context(), c.Param("name"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(ps)
}

func (pc *ProductController) ByCategory(c *ctx.Context) {
	ps, err := pc.service.ByCategory(c.Context(), c.Param("category"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(ps)
}

func (pc *ProductController) Variants(c *ctx.Context) {
	b, err := pc.service.ResolveVariants(c.Context(), c.Param("name"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(b)
}

func (pc *ProductController) Variant(c *ctx.Context) {
	p, err := pc.service.ResolveExactVariant(c.Context(), c.Param("name"), c.Param("color"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}
