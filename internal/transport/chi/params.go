package chi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/oapi-codegen/runtime"
)

// Query parameter names of the search endpoints.
const (
	paramQuery     = "query"
	paramTopK      = "topK"
	paramThreshold = "similarityThreshold"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type searchParams struct {
	Query     string  `validate:"required"`
	TopK      int     `validate:"min=1"`
	Threshold float64 `validate:"min=0,max=1"`
}

type filteredSearchParams struct {
	searchParams
	Value string `validate:"required"`
}

func bindSearchParams(r *http.Request) (searchParams, error) {
	var p searchParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, paramQuery, q, &p.Query); err != nil {
		return p, bindError(paramQuery, err)
	}
	if err := runtime.BindQueryParameter("form", true, true, paramTopK, q, &p.TopK); err != nil {
		return p, bindError(paramTopK, err)
	}
	if err := runtime.BindQueryParameter("form", true, true, paramThreshold, q, &p.Threshold); err != nil {
		return p, bindError(paramThreshold, err)
	}

	if err := validate.Struct(p); err != nil {
		return p, validationError(err)
	}
	return p, nil
}

func bindFilteredSearchParams(r *http.Request, field string) (filteredSearchParams, error) {
	base, err := bindSearchParams(r)
	if err != nil {
		return filteredSearchParams{}, err
	}

	p := filteredSearchParams{searchParams: base}
	if err := runtime.BindQueryParameter("form", true, true, field, r.URL.Query(), &p.Value); err != nil {
		return p, bindError(field, err)
	}
	if err := validate.Struct(p); err != nil {
		return p, validationError(err)
	}
	return p, nil
}

func bindError(name string, err error) error {
	return fmt.Errorf("invalid query parameter %q: %w", name, err)
}

// validationError renders validator failures using the wire names of the parameters.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	wire := map[string]string{
		"Query":     paramQuery,
		"TopK":      paramTopK,
		"Threshold": paramThreshold,
		"Value":     "filter value",
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		name := wire[fe.Field()]
		if name == "" {
			name = fe.Field()
		}
		if fe.Param() != "" {
			parts[i] = fmt.Sprintf("%s must satisfy %s=%s", name, fe.Tag(), fe.Param())
		} else {
			parts[i] = fmt.Sprintf("%s is %s", name, fe.Tag())
		}
	}
	return errors.New(strings.Join(parts, "; "))
}
