package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/takanag/nenga/core/greeting"
)

var (
	errYearNotFoundInCtx = errors.New("year object not found in echo.Context")
	errCardNotFoundInCtx = errors.New("card object not found in echo.Context")
)

type greetingApi struct {
	deps ServerDeps
}

func registerGreetingAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := greetingApi{deps: deps}

	yg := g.Group("/years", jwt)
	yg.GET("", api.queryYears)
	yg.POST("", api.createYear)

	// detail endpoints, owner or admin only
	ydg := yg.Group("/:id", api.yearAccessMiddleware())
	ydg.GET("", api.retrieveYear)
	ydg.PUT("", api.updateYear)
	ydg.DELETE("", api.destroyYear)
	ydg.GET("/cards", api.queryCards)
	ydg.POST("/cards", api.createCard)

	cg := g.Group("/cards/:id", jwt, api.cardAccessMiddleware())
	cg.PUT("", api.updateCard)
	cg.DELETE("", api.destroyCard)
	cg.POST("/move", api.moveCard)
}

// yearAccessMiddleware loads the year and enforces ownership: owners see
// their own years, admins see everything, everyone else sees a 404.
func (api *greetingApi) yearAccessMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, api.deps)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			y, err := api.deps.GreetingSvc.GetYearByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == greeting.ErrYearNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding year by ID")
			}
			if !y.EditableBy(ctxUsr) {
				return errHttpNotFound // no hint that the year exists
			}
			ctx.Set("year", y)
			return next(ctx)
		}
	}
}

func (api *greetingApi) cardAccessMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxUsr, err := getContextUser(ctx, api.deps)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}

			c, err := api.deps.GreetingSvc.GetCardByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				if errors.Cause(err) == greeting.ErrCardNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding card by ID")
			}
			y, err := api.deps.GreetingSvc.GetYearByID(ctx.Request().Context(), c.YearID)
			if err != nil {
				return errors.Wrap(err, "finding card's year")
			}
			if !y.EditableBy(ctxUsr) {
				return errHttpNotFound
			}
			ctx.Set("card", c)
			return next(ctx)
		}
	}
}

// Handlers

func (api *greetingApi) queryYears(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	var years []greeting.Year
	if ctxUsr.IsAdmin() {
		years, err = api.deps.GreetingSvc.QueryAllYears(ctx.Request().Context(), ordering.Orderings...)
	} else {
		years, err = api.deps.GreetingSvc.QueryYearsByOwner(ctx.Request().Context(), ctxUsr.ID, ordering.Orderings...)
	}
	if err != nil {
		return errors.Wrap(err, "querying years")
	}
	if years == nil {
		years = []greeting.Year{}
	}
	return ctx.JSON(http.StatusOK, years)
}

func (api *greetingApi) createYear(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.deps)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data greeting.NewYear
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewYear")
	}
	if err := data.Validate(api.deps.Validate, api.deps.GreetingSvc, ctxUsr.Username); err != nil {
		return err
	}

	y, err := api.deps.GreetingSvc.CreateYear(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return errors.Wrap(err, "creating year")
	}
	return ctx.JSON(http.StatusCreated, y)
}

func (api *greetingApi) retrieveYear(ctx echo.Context) error {
	y, ok := ctx.Get("year").(greeting.Year)
	if !ok {
		return errors.Wrap(errYearNotFoundInCtx, "retrieving object from context")
	}
	yc, err := api.deps.GreetingSvc.GetYearWithCards(ctx.Request().Context(), y.ID)
	if err != nil {
		return errors.Wrap(err, "loading year with cards")
	}
	return ctx.JSON(http.StatusOK, yc)
}

func (api *greetingApi) updateYear(ctx echo.Context) error {
	y, ok := ctx.Get("year").(greeting.Year)
	if !ok {
		return errors.Wrap(errYearNotFoundInCtx, "retrieving object from context")
	}

	var data greeting.UpdateYear
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateYear")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	y, err := api.deps.GreetingSvc.UpdateYear(ctx.Request().Context(), y.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating year")
	}
	return ctx.JSON(http.StatusOK, y)
}

func (api *greetingApi) destroyYear(ctx echo.Context) error {
	y, ok := ctx.Get("year").(greeting.Year)
	if !ok {
		return errors.Wrap(errYearNotFoundInCtx, "retrieving object from context")
	}
	if err := api.deps.GreetingSvc.DeleteYear(ctx.Request().Context(), y.ID); err != nil {
		return errors.Wrap(err, "deleting year")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *greetingApi) queryCards(ctx echo.Context) error {
	y, ok := ctx.Get("year").(greeting.Year)
	if !ok {
		return errors.Wrap(errYearNotFoundInCtx, "retrieving object from context")
	}
	yc, err := api.deps.GreetingSvc.GetYearWithCards(ctx.Request().Context(), y.ID)
	if err != nil {
		return errors.Wrap(err, "loading cards")
	}
	if yc.Cards == nil {
		yc.Cards = []greeting.Card{}
	}
	return ctx.JSON(http.StatusOK, yc.Cards)
}

func (api *greetingApi) createCard(ctx echo.Context) error {
	y, ok := ctx.Get("year").(greeting.Year)
	if !ok {
		return errors.Wrap(errYearNotFoundInCtx, "retrieving object from context")
	}

	var data greeting.NewCard
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCard")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	c, err := api.deps.GreetingSvc.CreateCard(ctx.Request().Context(), y.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating card")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *greetingApi) updateCard(ctx echo.Context) error {
	c, ok := ctx.Get("card").(greeting.Card)
	if !ok {
		return errors.Wrap(errCardNotFoundInCtx, "retrieving object from context")
	}

	var data greeting.UpdateCard
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCard")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	c, err := api.deps.GreetingSvc.UpdateCard(ctx.Request().Context(), c.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating card")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *greetingApi) destroyCard(ctx echo.Context) error {
	c, ok := ctx.Get("card").(greeting.Card)
	if !ok {
		return errors.Wrap(errCardNotFoundInCtx, "retrieving object from context")
	}
	if err := api.deps.GreetingSvc.DeleteCard(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting card")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *greetingApi) moveCard(ctx echo.Context) error {
	c, ok := ctx.Get("card").(greeting.Card)
	if !ok {
		return errors.Wrap(errCardNotFoundInCtx, "retrieving object from context")
	}

	var data greeting.MoveCard
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MoveCard")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	seq, err := api.deps.GreetingSvc.Move(ctx.Request().Context(), c.ID, data)
	if err != nil {
		return errors.Wrap(err, "moving card")
	}
	return ctx.JSON(http.StatusOK, seq)
}
