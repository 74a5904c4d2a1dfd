package echoapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type uploadApi struct {
	deps ServerDeps
}

func registerUploadAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := uploadApi{deps: deps}
	g.POST("/upload-image", api.uploadCardImage, jwt)
	g.POST("/upload-header-background", api.uploadHeaderImage, jwt)
}

type HeaderUploadResponse struct {
	ImageURL string `json:"imageUrl"`
}

// readUpload pulls the multipart "file" part, enforcing the size limit
// before the whole body is read into memory.
func (api *uploadApi) readUpload(ctx echo.Context) ([]byte, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}

	maxSize := api.deps.Conf.Media.MaxUploadSize
	if fh.Size > maxSize {
		return nil, errFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	// Size from the multipart header is client-supplied, cap the read too.
	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading uploaded file")
	}
	if int64(len(data)) > maxSize {
		return nil, errFileTooLarge
	}
	return data, nil
}

func (api *uploadApi) uploadCardImage(ctx echo.Context) error {
	data, err := api.readUpload(ctx)
	if err != nil {
		return err
	}
	img, err := api.deps.Media.ProcessCardImage(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, img)
}

func (api *uploadApi) uploadHeaderImage(ctx echo.Context) error {
	data, err := api.readUpload(ctx)
	if err != nil {
		return err
	}
	url, err := api.deps.Media.ProcessHeaderImage(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, HeaderUploadResponse{ImageURL: url})
}
