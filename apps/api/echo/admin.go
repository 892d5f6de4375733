package echoapi

import (
	"net/http"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/admin"
)

type adminApi struct {
	svc        admin.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerAdminAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc admin.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := adminApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	ag := g.Group("/admins")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	ag.POST("/login", api.login)
	ag.POST("/password-reset", api.resetPassword)
	ag.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	authed := ag.Group("", jwt, adminMiddleware(svc))
	authed.POST("/token-refresh", api.refreshToken)
	authed.POST("/register", api.create)
	authed.GET("", api.query)
	authed.DELETE("", api.destroyMultiple)
	authed.DELETE("/:id", api.destroy)
}

// Handlers

func (api *adminApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.Username, data.Password, api.svc)
	if err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return core.NewValidationError(errors.New("invalid credentials"))
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *adminApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == admin.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *adminApi) confirmPasswordReset(ctx echo.Context) error {
	var data admin.ResetAdminPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetAdminPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *adminApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *adminApi) create(ctx echo.Context) error {
	var data admin.NewAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdmin")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	adm, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating admin")
	}
	return ctx.JSON(http.StatusCreated, adm)
}

func (api *adminApi) query(ctx echo.Context) error {
	admins, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying admins")
	}
	if admins == nil {
		admins = []admin.Admin{}
	}
	return ctx.JSON(http.StatusOK, admins)
}

func (api *adminApi) destroy(ctx echo.Context) error {
	// Say No to Suicide! ctxAdmin cannot delete themselves
	ctxAdm, err := getContextAdmin(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context admin")
	}
	id := ctx.Param("id")
	if id == ctxAdm.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting admin")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// Say No to Suicide! ctxAdmin cannot delete themselves
	ctxAdm, err := getContextAdmin(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context admin")
	}
	sort.Strings(query.IDs)
	if i := sort.SearchStrings(query.IDs, ctxAdm.ID); i < len(query.IDs) {
		if match := query.IDs[i]; ctxAdm.ID == match {
			return errHttpForbidden
		}
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		if errors.Cause(err) == admin.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting admins")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate(validate *validator.Validate) error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return validate.Struct(pr)
}
