package annotation

import (
	"image/color"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/markmywords/core"
)

// Colour is a pen colour the user may pick.
type Colour string

const (
	Red   Colour = "red"
	Black Colour = "black"

	DefaultColour = Red
)

var (
	ErrUnknownColour = errors.New("unknown colour")

	colourTag  = "colour"
	colourText = "colour must be one of red or black"

	palette = map[Colour]color.RGBA{
		Red:   {R: 0xff, A: 0xff},
		Black: {A: 0xff},
	}
)

func ParseColour(s string) (Colour, error) {
	c := Colour(core.CleanString(s, true /* lower */))
	if _, ok := palette[c]; !ok {
		return "", errors.Wrap(ErrUnknownColour, s)
	}
	return c, nil
}

func (c Colour) Valid() bool {
	_, ok := palette[c]
	return ok
}

// RGBA returns the colour strokes are drawn with.
func (c Colour) RGBA() color.RGBA {
	return palette[c]
}

// RegisterValidators adds the `colour` tag.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(colourTag, colourValidation)
	core.RegisterCustomTranslation(validate, translator, colourTag, colourText)
}

func colourValidation(fl validator.FieldLevel) bool {
	_, err := ParseColour(fl.Field().String())
	return err == nil
}
