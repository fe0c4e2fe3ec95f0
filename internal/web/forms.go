package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/vmunix/discshelf/internal/catalog"
)

const (
	minYear = 1870
	maxYear = 2100
)

// commonFormats are offered as checkboxes on the add forms.
var commonFormats = []string{"DVD", "Blu-ray", "4K UHD", "VHS", "Digital"}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// manualForm is the manual add input, shared by the HTML form and JSON API.
type manualForm struct {
	Title   string   `validate:"required,max=300"`
	Year    *int     `validate:"omitempty,min=1870,max=2100"`
	Formats []string `validate:"min=1,dive,required,max=50"`
}

// tmdbForm is the add-from-TMDB input.
type tmdbForm struct {
	TMDBID  int64    `validate:"required,gt=0"`
	Formats []string `validate:"min=1,dive,required,max=50"`
}

// formValues are the raw values echoed back into a form after an error.
type formValues struct {
	Title   string
	Year    string
	Formats map[string]bool
	Other   string
}

func parseManualForm(r *http.Request) (manualForm, formValues, error) {
	if err := r.ParseForm(); err != nil {
		return manualForm{}, formValues{}, fmt.Errorf("bad form: %w", err)
	}
	vals := formValues{
		Title:   strings.TrimSpace(r.PostForm.Get("title")),
		Year:    strings.TrimSpace(r.PostForm.Get("year")),
		Formats: make(map[string]bool),
		Other:   strings.TrimSpace(r.PostForm.Get("format_other")),
	}
	for _, f := range r.PostForm["format"] {
		vals.Formats[f] = true
	}

	form := manualForm{Title: vals.Title}
	form.Formats = catalog.SplitFormats(catalog.JoinFormats(append(r.PostForm["format"], vals.Other)...))
	if vals.Year != "" {
		y, err := strconv.Atoi(vals.Year)
		if err != nil {
			return form, vals, formError("Year must be a number.")
		}
		form.Year = &y
	}
	if err := validateForm(form); err != nil {
		return form, vals, err
	}
	return form, vals, nil
}

func parseTMDBForm(r *http.Request) (tmdbForm, error) {
	if err := r.ParseForm(); err != nil {
		return tmdbForm{}, fmt.Errorf("bad form: %w", err)
	}
	var form tmdbForm
	id, err := strconv.ParseInt(strings.TrimSpace(r.PostForm.Get("tmdb_id")), 10, 64)
	if err != nil {
		return form, formError("A TMDB id is required.")
	}
	form.TMDBID = id
	form.Formats = catalog.SplitFormats(catalog.JoinFormats(append(r.PostForm["format"], r.PostForm.Get("format_other"))...))
	if err := validateForm(form); err != nil {
		return form, err
	}
	return form, nil
}

// formError is a validation message meant to be shown to the user as-is.
type formError string

func (e formError) Error() string { return string(e) }

func formErrorf(format string, args ...any) error {
	return formError(fmt.Sprintf(format, args...))
}

// validateForm runs struct validation and turns the first failure into a
// sentence fit for display.
func validateForm(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.StructField()
	if strings.HasPrefix(field, "Formats[") {
		field = "Formats"
	}
	switch field {
	case "Title":
		if fe.Tag() == "required" {
			return formError("Title is required.")
		}
		return formErrorf("Title must be at most %s characters.", fe.Param())
	case "Year":
		return formErrorf("Year must be between %d and %d.", minYear, maxYear)
	case "Formats":
		if fe.Tag() == "max" {
			return formErrorf("Formats must be at most %s characters each.", fe.Param())
		}
		return formError("Pick at least one format.")
	case "TMDBID":
		return formError("A TMDB id is required.")
	default:
		return formErrorf("%s is invalid.", fe.Field())
	}
}
