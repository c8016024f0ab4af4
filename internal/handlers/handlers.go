package handlers

import (
	"regexp"

	"gotalk/server/internal/history"
	"gotalk/server/internal/partner"

	"github.com/go-playground/validator/v10"
)

var (
	partners *partner.Service
	visits   *history.Ring

	validate = validator.New()

	phoneRegexp = regexp.MustCompile(`^\+?1?\d{8,15}$`)
)

func init() {
	validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegexp.MatchString(fl.Field().String())
	})
}

// Init wires the handler package to its collaborators. Must be called
// before the routes are served.
func Init(partnerService *partner.Service, visitRing *history.Ring) {
	partners = partnerService
	visits = visitRing
}
