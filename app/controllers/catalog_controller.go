package controllers

import (
	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
)

type CategoryController struct {
	service *services.CategoryService
}

func NewCategoryController(service *services.CategoryService) *CategoryController {
	return &CategoryController{service: service}
}

func (cc *CategoryController) Store(c *ctx.Context) {
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := cc.service.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(cat)
}

// Index lists active categories.
func (cc *CategoryController) Index(c *ctx.Context) {
	cats, err := cc.service.ListActive(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cats)
}

// All lists every category, inactive ones included.
func (cc *CategoryController) All(c *ctx.Context) {
	cats, err := cc.service.ListAll(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cats)
}

func (cc *CategoryController) Show(c *ctx.Context) {
	cat, err := cc.service.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cat)
}

func (cc *CategoryController) Search(c *ctx.Context) {
	cat, err := cc.service.FindByName(c.Context(), c.Param("name"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cat)
}

func (cc *CategoryController) Update(c *ctx.Context) {
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := cc.service.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cat)
}

func (cc *CategoryController) Destroy(c *ctx.Context) {
	cat, err := cc.service.Delete(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Category deleted successfully", cat)
}

type AttributeController struct {
	service *services.AttributeService
}

func NewAttributeController(service *services.AttributeService) *AttributeController {
	return &AttributeController{service: service}
}

func (ac *AttributeController) Store(c *ctx.Context) {
	var in services.AttributeInput
	if !c.BindJSON(&in) {
		return
	}
	a, err := ac.service.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(a)
}

func (ac *AttributeController) Index(c *ctx.Context) {
	as, err := ac.service.ListActive(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(as)
}

func (ac *AttributeController) ByType(c *ctx.Context) {
	as, err := ac.service.ListByType(c.Context(), c.Param("type"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(as)
}

func (ac *AttributeController) Show(c *ctx.Context) {
	a, err := ac.service.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(a)
}

func (ac *AttributeController) Update(c *ctx.Context) {
	var in services.AttributeInput
	if !c.BindJSON(&in) {
		return
	}
	a, err := ac.service.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(a)
}

func (ac *AttributeController) Destroy(c *ctx.Context) {
	a, err := ac.service.Delete(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Attribute deleted successfully", a)
}
