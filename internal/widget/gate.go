package widget

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/samber/lo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

type signInInput struct {
	Company string `validate:"notblank"`
}

type sendInput struct {
	Text string `validate:"notblank"`
}

func checkIdentity(identity string) error {
	if err := validate.Struct(signInInput{Company: identity}); err != nil {
		return ErrEmptyIdentity
	}
	return nil
}

func checkMessage(text string) error {
	if err := validate.Struct(sendInput{Text: text}); err != nil {
		return ErrEmptyMessage
	}
	return nil
}

// OpenDirectory accepts every company identity.
type OpenDirectory struct{}

func (OpenDirectory) Resolve(context.Context, string) error {
	return nil
}

// CompanyDirectory accepts only the listed companies, compared
// case-insensitively after trimming. Anything else is ErrUnknownCompany.
type CompanyDirectory struct {
	known map[string]struct{}
}

func NewCompanyDirectory(companies []string) CompanyDirectory {
	keys := lo.Compact(lo.Map(companies, func(c string, _ int) string {
		return companyKey(c)
	}))
	return CompanyDirectory{known: lo.SliceToMap(keys, func(k string) (string, struct{}) {
		return k, struct{}{}
	})}
}

func (d CompanyDirectory) Resolve(_ context.Context, identity string) error {
	if _, ok := d.known[companyKey(identity)]; !ok {
		return ErrUnknownCompany
	}
	return nil
}

func companyKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
