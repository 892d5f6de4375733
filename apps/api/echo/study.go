package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core/admin"
	"github.com/trezcool/studylog/core/study"
)

type studyApi struct {
	svc        study.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerStudyAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc study.Service,
	adminSvc admin.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := studyApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	sg := g.Group("/study")

	// un-authed endpoints: the log is public to read
	sg.GET("/sessions", api.querySessions)
	sg.GET("/summary", api.summary)
	sg.GET("/export", api.export)
	sg.GET("/subjects", api.querySubjects)

	// authed endpoints: every write is admin-gated
	ag := sg.Group("", jwt, adminMiddleware(adminSvc))
	ag.POST("/sessions", api.addSession)
	ag.DELETE("/sessions/:id", api.destroySession)
	ag.POST("/subjects", api.createSubject)
	ag.DELETE("/subjects/:id", api.destroySubject)
}

// Handlers

func (api *studyApi) querySessions(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	sessions, err := api.svc.LoadSessions(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "loading sessions")
	}
	if sessions == nil {
		sessions = []study.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *studyApi) addSession(ctx echo.Context) error {
	var data study.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.AddSession(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *studyApi) destroySession(ctx echo.Context) error {
	if err := api.svc.DeleteSession(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == study.ErrSessionNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studyApi) summary(ctx echo.Context) error {
	summaries, err := api.svc.Summary(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "summarizing sessions")
	}
	if summaries == nil {
		summaries = []study.SubjectSummary{}
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *studyApi) export(ctx echo.Context) error {
	doc, err := api.svc.ExportHTML(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "exporting sessions")
	}
	ctx.Response().Header().Set("Content-Disposition", `inline; filename="study-log.html"`)
	return ctx.HTMLBlob(http.StatusOK, doc)
}

func (api *studyApi) querySubjects(ctx echo.Context) error {
	subjects, err := api.svc.QuerySubjects(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []study.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *studyApi) createSubject(ctx echo.Context) error {
	var data study.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *studyApi) destroySubject(ctx echo.Context) error {
	if err := api.svc.DeleteSubject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == study.ErrSubjectNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}
