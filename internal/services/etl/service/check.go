package service

import (
	"sync"

	"loteria/internal/core/refdata"
	perr "loteria/internal/platform/errors"
	"loteria/internal/platform/validate"
	"loteria/internal/services/etl/domain"

	"github.com/go-playground/validator/v10"
)

var rulesOnce sync.Once

func registerRules() {
	rulesOnce.Do(func() {
		_ = validate.RegisterValidation("uf", func(fl validator.FieldLevel) bool {
			return refdata.Valid(fl.Field().String())
		}, "{0} must be a known state code")
	})
}

// check is the pre-commit gate over the row invariants and contest links.
// A failing load never reaches storage
func check(l domain.Load) error {
	registerRules()

	ids := make(map[int64]struct{}, len(l.Contests))
	for i := range l.Contests {
		c := &l.Contests[i]
		if err := validate.Struct(c); err != nil {
			return perr.WithOp(err, "check contests")
		}
		if _, dup := ids[c.ID]; dup {
			return perr.WithOp(perr.Validationf("contest id %d assigned twice", c.ID), "check contests")
		}
		ids[c.ID] = struct{}{}
	}
	for i := range l.Prizes {
		p := &l.Prizes[i]
		if err := validate.Struct(p); err != nil {
			return perr.WithOp(err, "check prize_tiers")
		}
		if _, ok := ids[p.ContestID]; !ok {
			return perr.WithOp(perr.Validationf("prize tier references unknown contest %d", p.ContestID), "check prize_tiers")
		}
	}
	for i := range l.Winners {
		w := &l.Winners[i]
		if err := validate.Struct(w); err != nil {
			return perr.WithOp(err, "check winners")
		}
		if _, ok := ids[w.ContestID]; !ok {
			return perr.WithOp(perr.Validationf("winner references unknown contest %d", w.ContestID), "check winners")
		}
	}
	return nil
}
