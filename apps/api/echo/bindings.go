package echoapi

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/markmywords/core/document"
	"github.com/trezcool/markmywords/core/session"
)

type (
	// LoginRequest is matched exactly; usernames and passwords are not normalized.
	LoginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	LoginResponse struct {
		Token string       `json:"token"`
		User  UserResponse `json:"user"`
	}

	UserResponse struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	}

	SessionResponse struct {
		User      UserResponse      `json:"user"`
		Selection session.Selection `json:"selection"`
	}

	ThemeResponse struct {
		Theme session.ThemeMode `json:"theme"`
	}

	ColourRequest struct {
		Colour string `json:"colour" validate:"colour"`
	}

	ColourResponse struct {
		Colour string `json:"colour"`
	}

	// PointerEvent is a browser pointer event on the canvas.
	// Left and Top are the canvas' bounding rect offsets, in the same coordinates as ClientX and ClientY.
	PointerEvent struct {
		Type    string  `json:"type" validate:"oneof=down move up leave"`
		ClientX float64 `json:"clientX"`
		ClientY float64 `json:"clientY"`
		Left    float64 `json:"left"`
		Top     float64 `json:"top"`
	}

	PointerResponse struct {
		Drawing    bool                 `json:"drawing"`
		Committed  bool                 `json:"committed"`
		Annotation *document.Annotation `json:"annotation,omitempty"`
	}
)

func newUserResponse(usr document.User) UserResponse {
	return UserResponse{ID: usr.ID, Username: usr.Username}
}

func (cr ColourRequest) Validate(v *validator.Validate) error { return v.Struct(cr) }

func (pe PointerEvent) Validate(v *validator.Validate) error { return v.Struct(pe) }
