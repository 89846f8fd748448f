package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"customer-dashboard/internal/dataset"
	apperrors "customer-dashboard/internal/errors"
	"customer-dashboard/internal/models"
	"customer-dashboard/internal/services"
)

const dateLayout = "2006-01-02"

// FilterQuery is the filter selection as sent by the browser, either as URL
// query parameters or as Datastar signals.
type FilterQuery struct {
	Start  string   `json:"start" validate:"omitempty,datetime=2006-01-02"`
	End    string   `json:"end" validate:"omitempty,datetime=2006-01-02"`
	States []string `json:"states" validate:"max=200,dive,required,max=64"`
	All    bool     `json:"all"`
}

// FilterParser validates a FilterQuery and turns it into service parameters,
// filling missing dates from the configured slider bounds.
type FilterParser struct {
	defaults models.DateRange
	validate *validator.Validate
}

func NewFilterParser(defaults models.DateRange) *FilterParser {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &FilterParser{defaults: defaults, validate: v}
}

// FromRequest reads start, end, repeated state and all from the URL query.
func (p *FilterParser) FromRequest(r *http.Request) (services.FilterParams, error) {
	values := r.URL.Query()
	q := FilterQuery{
		Start:  values.Get("start"),
		End:    values.Get("end"),
		States: values["state"],
	}
	if v := values.Get("all"); v != "" {
		all, err := strconv.ParseBool(v)
		if err != nil {
			return services.FilterParams{}, apperrors.Validation(fmt.Sprintf("all: %q is not a boolean", v))
		}
		q.All = all
	}
	return p.Params(q)
}

func (p *FilterParser) Params(q FilterQuery) (services.FilterParams, error) {
	if err := p.validate.Struct(q); err != nil {
		return services.FilterParams{}, validationError(err)
	}

	r := p.defaults
	if q.Start != "" {
		t, _ := time.Parse(dateLayout, q.Start)
		r.Start = t
	}
	if q.End != "" {
		t, _ := time.Parse(dateLayout, q.End)
		r.End = t
	}
	if err := services.ValidateRange(r); err != nil {
		return services.FilterParams{}, err
	}

	return services.FilterParams{Range: r, States: q.States, AllStates: q.All}, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.ValidationWrap(err, "invalid filter")
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s must be a date in YYYY-MM-DD form", fe.Field()))
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s must not contain empty labels", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	appErr := apperrors.Validation("invalid filter")
	appErr.Details = strings.Join(msgs, "; ")
	return appErr
}

// toAppError maps domain errors onto API error codes.
func toAppError(err error) error {
	var appErr *apperrors.AppError
	var loadErr *dataset.DataLoadError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, services.ErrInvalidRange):
		return apperrors.InvalidRange(err)
	case errors.As(err, &loadErr):
		return apperrors.DataLoad(err, "dataset could not be loaded")
	default:
		return err
	}
}

// userMessage is the text shown in the dashboard status area for err.
func userMessage(err error) string {
	if appErr, ok := toAppError(err).(*apperrors.AppError); ok {
		if appErr.Details != "" {
			return appErr.Message + ": " + appErr.Details
		}
		return appErr.Message
	}
	return "something went wrong, please retry"
}
