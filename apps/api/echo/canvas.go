package echoapi

import (
	"bytes"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/markmywords/core/annotation"
	"github.com/trezcool/markmywords/core/document"
	"github.com/trezcool/markmywords/services/canvas"
)

type canvasApi struct {
	pad      *annotation.Pad
	raster   *canvas.Raster
	validate *validator.Validate
}

func registerCanvasAPI(g *echo.Group, authed echo.MiddlewareFunc, srv *Server) {
	api := canvasApi{pad: srv.deps.Pad, raster: srv.deps.Raster, validate: srv.deps.Validate}
	api.pad.Bind(api.raster)

	cg := g.Group("/canvas", authed)
	cg.GET("", api.render)
	cg.GET("/colour", api.retrieveColour)
	cg.PUT("/colour", api.updateColour)
	cg.POST("/pointer", api.pointer)
}

func (api *canvasApi) render(ctx echo.Context) error {
	var buf bytes.Buffer
	if err := api.raster.EncodePNG(&buf); err != nil {
		return err
	}
	return ctx.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (api *canvasApi) retrieveColour(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ColourResponse{Colour: string(api.pad.Colour())})
}

func (api *canvasApi) updateColour(ctx echo.Context) error {
	var data ColourRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ColourRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	colour, err := annotation.ParseColour(data.Colour)
	if err != nil {
		return err
	}
	if err = api.pad.SetColour(colour); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ColourResponse{Colour: string(colour)})
}

// pointer feeds one pointer event to the capture loop.
// Pointer up and leaving the canvas both end the gesture.
func (api *canvasApi) pointer(ctx echo.Context) error {
	var data PointerEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PointerEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	api.raster.SetOrigin(document.Point{X: data.Left, Y: data.Top})
	pt := document.Point{X: data.ClientX, Y: data.ClientY}

	var resp PointerResponse
	switch data.Type {
	case "down":
		api.pad.Begin(pt)
	case "move":
		api.pad.Extend(pt)
	case "up", "leave":
		ann, committed, err := api.pad.End(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "committing annotation")
		}
		if committed {
			resp.Committed = true
			resp.Annotation = &ann
		}
	}
	resp.Drawing = api.pad.Drawing()
	return ctx.JSON(http.StatusOK, resp)
}
