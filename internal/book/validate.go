package book

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("isodate", validateISODate); err != nil {
		panic("register isodate validation: " + err.Error())
	}
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := ParseDate(fl.Field().String())
	return err == nil
}

// fieldRule binds an input field to the validator tags of its trimmed value.
type fieldRule struct {
	name string
	tags string
	get  func(*Input) Optional[string]
}

// Rules run in this order; the first failure wins.
var fieldRules = []fieldRule{
	{name: "title", tags: "required", get: func(in *Input) Optional[string] { return in.Title }},
	{name: "author", tags: "required", get: func(in *Input) Optional[string] { return in.Author }},
	{name: "publishedDate", tags: "required,isodate", get: func(in *Input) Optional[string] { return in.PublishedDate }},
	{name: "genre", tags: "required", get: func(in *Input) Optional[string] { return in.Genre }},
}

// check returns the trimmed value and whether the field was present.
func (r fieldRule) check(in *Input, required bool) (string, bool, error) {
	opt := r.get(in)
	if !opt.Set {
		if required {
			return "", false, invalid(r.name, "%q is required")
		}
		return "", false, nil
	}
	if !opt.Valid {
		return "", true, r.typeError()
	}

	value := strings.TrimSpace(opt.Value)
	if err := validate.Var(value, r.tags); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return "", true, r.tagError(verrs[0].Tag())
		}
		return "", true, err
	}
	return value, true, nil
}

func (r fieldRule) typeError() *ValidationError {
	if strings.Contains(r.tags, "isodate") {
		return r.tagError("isodate")
	}
	return invalid(r.name, "%q must be a string")
}

func (r fieldRule) tagError(tag string) *ValidationError {
	switch tag {
	case "required":
		return invalid(r.name, "%q is not allowed to be empty")
	case "isodate":
		return invalid(r.name, "%q must be in ISO 8601 date format")
	default:
		return invalid(r.name, "%q is invalid")
	}
}

// ValidateForCreate requires every field and returns the normalized content.
func ValidateForCreate(in Input) (Fields, error) {
	values := make(map[string]string, len(fieldRules))
	for _, rule := range fieldRules {
		v, _, err := rule.check(&in, true)
		if err != nil {
			return Fields{}, err
		}
		values[rule.name] = v
	}

	published, err := ParseDate(values["publishedDate"])
	if err != nil {
		return Fields{}, invalid("publishedDate", "%q must be in ISO 8601 date format")
	}
	return Fields{
		Title:         values["title"],
		Author:        values["author"],
		PublishedDate: published,
		Genre:         values["genre"],
	}, nil
}

// ValidateForUpdate checks only the present fields and returns them as a Patch.
func ValidateForUpdate(in Input) (Patch, error) {
	var p Patch
	for _, rule := range fieldRules {
		v, present, err := rule.check(&in, false)
		if err != nil {
			return Patch{}, err
		}
		if !present {
			continue
		}
		switch rule.name {
		case "title":
			p.Title = &v
		case "author":
			p.Author = &v
		case "genre":
			p.Genre = &v
		case "publishedDate":
			d, err := ParseDate(v)
			if err != nil {
				return Patch{}, invalid(rule.name, "%q must be in ISO 8601 date format")
			}
			p.PublishedDate = &d
		}
	}
	return p, nil
}
