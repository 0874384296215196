package v1

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/aquabill/internal/domain"
)

// toHTTPError maps domain sentinels to HTTP status codes. msg is used for the
// 500 response so storage details are not echoed to clients.
func toHTTPError(err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, domain.ErrDuplicateKey):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, domain.ErrValidation):
		return huma.Error400BadRequest(err.Error())
	default:
		log.Error().Err(err).Msg(msg)
		return huma.Error500InternalServerError(msg)
	}
}
