package cme

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/auth"
	"github.com/astrobsm/UNTH-PLASTICSURGASSIST-sub000/internal/platform/schema"
)

// QuizSubmission is the body of a quiz grading call.
type QuizSubmission struct {
	Answers []int `json:"answers"`
}

type Handler struct {
	svc     *Service
	schemas *schema.Validator
}

func NewHandler(svc *Service, schemas *schema.Validator) *Handler {
	return &Handler{svc: svc, schemas: schemas}
}

func (h *Handler) RegisterRoutes(api *echo.Group, _ *echo.Group) {
	var mw []echo.MiddlewareFunc
	if h.schemas != nil {
		mw = append(mw, h.schemas.Body("QuizAnswers"))
	}

	g := api.Group("/cme", auth.RequireRole(auth.ClinicalReaders...))
	g.GET("/modules", h.ListModules)
	g.GET("/outline", h.Outline)
	g.GET("/modules/:module", h.GetModule)
	g.GET("/modules/:module/topics/:topic", h.GetTopic)
	g.POST("/modules/:module/topics/:topic/quiz", h.GradeQuiz, mw...)
}

func notFound(err error) bool {
	return errors.Is(err, ErrModuleNotFound) || errors.Is(err, ErrTopicNotFound)
}

func (h *Handler) ListModules(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.ListModules())
}

func (h *Handler) Outline(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Outline())
}

func (h *Handler) GetModule(c echo.Context) error {
	m, err := h.svc.GetModule(c.Param("module"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) GetTopic(c echo.Context) error {
	t, err := h.svc.GetTopic(c.Param("module"), c.Param("topic"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) GradeQuiz(c echo.Context) error {
	var req QuizSubmission
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.GradeQuiz(c.Param("module"), c.Param("topic"), req.Answers)
	if err != nil {
		if notFound(err) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, r)
}
