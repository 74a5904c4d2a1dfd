package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type translateApi struct {
	deps ServerDeps
}

func registerTranslateAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := translateApi{deps: deps}
	g.POST("/translate", api.translate, jwt)
}

type TranslateRequest struct {
	Text       string `json:"text"`
	TargetLang string `json:"targetLang" validate:"required"`
}

func (tr *TranslateRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(tr)
}

type TranslateResponse struct {
	TranslatedText string `json:"translatedText"`
}

func (api *translateApi) translate(ctx echo.Context) error {
	var data TranslateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TranslateRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	text, err := api.deps.TranslateSvc.Translate(ctx.Request().Context(), data.Text, data.TargetLang)
	if err != nil {
		return errors.Wrap(err, "translating text")
	}
	return ctx.JSON(http.StatusOK, TranslateResponse{TranslatedText: text})
}
