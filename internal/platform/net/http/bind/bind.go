// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	perr "shipscan/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// MaxBody caps a request body. Scan batches are the largest payloads
const MaxBody = 1 << 20

type checker struct {
	v     *validator.Validate
	trans ut.Translator
}

var get = sync.OnceValue(func() *checker {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	short(v, trans, "nonblank", "{0} must not be blank")
	short(v, trans, "min", "{0} must be at least {1}")
	short(v, trans, "max", "{0} must be at most {1}")
	short(v, trans, "oneof", "{0} must be one of [{1}]")

	return &checker{v: v, trans: trans}
})

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

func short(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// ParseJSON decodes the body into T and validates it. Unknown fields,
// trailing data and bodies over MaxBody are JSON errors. An empty body is
// accepted for GET and DELETE only
func ParseJSON[T any](r *http.Request) (T, error) {
	var dst T
	if r.Body == nil || r.Body == http.NoBody {
		if r.Method == http.MethodGet || r.Method == http.MethodDelete {
			return dst, nil
		}
		return dst, perr.JSONErrf("empty body")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			if r.Method == http.MethodGet || r.Method == http.MethodDelete {
				return dst, nil
			}
			return dst, perr.JSONErrf("empty body")
		}
		return dst, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return dst, perr.JSONErrf("unexpected trailing data")
	}
	if err := Validate(dst); err != nil {
		var zero T
		return zero, err
	}
	return dst, nil
}

// Validate runs the struct tags on v. The first failing field is attached
// to the returned validation error
func Validate(v any) error {
	c := get()
	err := c.v.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return perr.Wrap(err, perr.ErrorCodeValidation, "validation error")
	}
	fe := verrs[0]
	return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(c.trans)), fe.Field())
}
