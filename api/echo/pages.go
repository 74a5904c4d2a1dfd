package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/takanag/nenga/core/greeting"
)

type pages struct {
	deps ServerDeps
}

func registerPages(app *echo.Echo, deps ServerDeps) {
	p := pages{deps: deps}

	app.GET("/greeting/:username/:year", p.greetingPage(greeting.LocaleBase))
	app.GET("/greeting/:username/:year/english", p.greetingPage(greeting.LocaleEnglish))

	app.GET("/admin/login", p.loginPage)
	app.GET("/admin/signup", p.signupPage)
	app.GET("/admin", p.adminPage, sessionPageMiddleware("/admin/login"))
}

func (p *pages) greetingPage(loc greeting.Locale) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		year, err := strconv.Atoi(ctx.Param("year"))
		if err != nil {
			return errHttpNotFound
		}

		pv, err := p.deps.GreetingSvc.GetPage(ctx.Request().Context(), ctx.Param("username"), year, loc)
		if err != nil {
			// the public page fails closed; visitors only ever see a 404
			if errors.Cause(err) != greeting.ErrYearNotFound {
				p.deps.Logger.Error("loading greeting page", err)
			}
			return errHttpNotFound
		}
		return ctx.Render(http.StatusOK, "greeting.gohtml", pv)
	}
}

func (p *pages) loginPage(ctx echo.Context) error {
	// an already authenticated visitor goes straight to the dashboard
	if hasValidSession(ctx) {
		return ctx.Redirect(http.StatusFound, "/admin")
	}
	return ctx.Render(http.StatusOK, "login.gohtml", nil)
}

func (p *pages) signupPage(ctx echo.Context) error {
	if hasValidSession(ctx) {
		return ctx.Redirect(http.StatusFound, "/admin")
	}
	return ctx.Render(http.StatusOK, "signup.gohtml", nil)
}

func hasValidSession(ctx echo.Context) bool {
	cookie, err := ctx.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	_, err = parseSessionToken(cookie.Value)
	return err == nil
}

func (p *pages) adminPage(ctx echo.Context) error {
	claims, ok := ctx.Get(contextClaimsKey).(Claims)
	if !ok {
		return errUnauthorized
	}
	return ctx.Render(http.StatusOK, "admin.gohtml", echo.Map{
		"Username": claims.Username,
		"IsAdmin":  claims.IsAdmin,
	})
}
