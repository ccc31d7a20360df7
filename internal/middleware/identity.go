package middleware

// identity.go turns the values stored by JWTAuth into the core Actor type.

import (
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/danceclub-booking/internal/model"
)

// Context keys written by JWTAuth.
const (
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxDanceType = "dance_type"
)

// ErrNoIdentity is returned when the request carries no usable identity.
var ErrNoIdentity = errors.New("invalid user_id in context")

// ActorFrom builds the caller from the request context.
func ActorFrom(c echo.Context) (model.Actor, error) {
	id, err := userIDFrom(c.Get(CtxUserID))
	if err != nil {
		return model.Actor{}, err
	}
	role, _ := c.Get(CtxRole).(string)
	danceType, _ := c.Get(CtxDanceType).(string)
	return model.Actor{
		ID:        id,
		Role:      model.Role(strings.ToLower(strings.TrimSpace(role))),
		DanceType: strings.TrimSpace(danceType),
	}, nil
}

// userIDFrom accepts the claim types produced by different token issuers.
func userIDFrom(v any) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		if t > 0 {
			return uint64(t), nil
		}
	case int64:
		if t > 0 {
			return uint64(t), nil
		}
	case float64:
		if t > 0 {
			return uint64(t), nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil && n > 0 {
			return n, nil
		}
	}
	return 0, ErrNoIdentity
}

// currentUserID is the rate limit identity; anonymous callers share "anon".
func currentUserID(c echo.Context) string {
	if id, err := userIDFrom(c.Get(CtxUserID)); err == nil {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
