package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
	"github.com/shashiranjanraj/shopfront/pkg/middleware"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

type UserController struct {
	service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{service: service}
}

type emailInput struct {
	Email string `json:"email" validate:"required,email"`
}

func (uc *UserController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := uc.service.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusCreated, response.Envelope{Status: http.StatusCreated, Message: res.Message, Data: res})
}

func (uc *UserController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := uc.service.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage(res.Message, res)
}

func (uc *UserController) VerifyEmail(c *ctx.Context) {
	if err := uc.service.VerifyEmail(c.Context(), c.Query("token")); err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Email verified successfully", nil)
}

func (uc *UserController) ResendVerification(c *ctx.Context) {
	var in emailInput
	if !c.BindJSON(&in) {
		return
	}
	if err := uc.service.ResendVerification(c.Context(), in.Email); err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Verification email sent successfully", nil)
}

func (uc *UserController) ForgotPassword(c *ctx.Context) {
	var in emailInput
	if !c.BindJSON(&in) {
		return
	}
	if err := uc.service.ForgotPassword(c.Context(), in.Email); err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("If an account exists for that email, a password reset link has been sent", nil)
}

func (uc *UserController) ResetPassword(c *ctx.Context) {
	var in services.ResetPasswordInput
	if !c.BindJSON(&in) {
		return
	}
	if err := uc.service.ResetPassword(c.Context(), in); err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Password reset successfully", nil)
}

func (uc *UserController) Profile(c *ctx.Context) {
	u, err := uc.service.Profile(c.Context(), middleware.IdentityFromCtx(c.Context()))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}

func (uc *UserController) UpdateProfile(c *ctx.Context) {
	var in services.UserUpdate
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.service.UpdateProfile(c.Context(), middleware.IdentityFromCtx(c.Context()), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}

func (uc *UserController) ChangePassword(c *ctx.Context) {
	var in services.ChangePasswordInput
	if !c.BindJSON(&in) {
		return
	}
	if err := uc.service.ChangePassword(c.Context(), middleware.IdentityFromCtx(c.Context()), in); err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("Password changed successfully", nil)
}

// ---- admin ----

func (uc *UserController) Index(c *ctx.Context) {
	us, err := uc.service.List(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(us)
}

func (uc *UserController) ByRole(c *ctx.Context) {
	us, err := uc.service.ListByRole(c.Context(), c.Param("role"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(us)
}

func (uc *UserController) Show(c *ctx.Context) {
	u, err := uc.service.Get(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}

func (uc *UserController) Store(c *ctx.Context) {
	var in services.AdminCreateInput
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.service.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusCreated, response.Envelope{Status: http.StatusCreated, Message: "User created successfully", Data: u})
}

func (uc *UserController) Update(c *ctx.Context) {
	var in services.UserUpdate
	if !c.BindJSON(&in) {
		return
	}
	u, err := uc.service.Update(c.Context(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(u)
}

func (uc *UserController) Destroy(c *ctx.Context) {
	u, err := uc.service.Delete(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.SuccessMessage("User deleted successfully", u)
}
