package gateway

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/go-playground/validator/v10"
)

type bookingRequest struct {
	ItemID int64                 `json:"itemId" validate:"required,gt=0"`
	Start  *models.LocalDateTime `json:"start" validate:"required"`
	End    *models.LocalDateTime `json:"end" validate:"required"`
}

type userCreateRequest struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
}

type userUpdateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
}

type itemCreateRequest struct {
	Name        string `json:"name" validate:"notblank"`
	Description string `json:"description" validate:"notblank"`
	Available   *bool  `json:"available" validate:"required"`
	RequestID   *int64 `json:"requestId" validate:"omitempty,gt=0"`
}

type itemUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

type commentRequest struct {
	Text string `json:"text" validate:"notblank"`
}

type itemRequestRequest struct {
	Description string `json:"description" validate:"notblank"`
}

type listQuery struct {
	State string `json:"state" validate:"bookingstate"`
	From  int    `json:"from" validate:"gte=0"`
	Size  int    `json:"size" validate:"gte=1"`
}

// Validator checks request shape before anything is forwarded.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func NewValidator() *Validator {
	v := &Validator{validate: validator.New(), now: time.Now}

	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.validate.RegisterValidation("bookingstate", func(fl validator.FieldLevel) bool {
		_, err := models.ParseBookingState(fl.Field().String())
		return err == nil
	})
	v.validate.RegisterStructValidation(v.bookingDates, bookingRequest{})

	return v
}

// bookingDates requires start not in the past, end in the future and
// start strictly before end.
func (v *Validator) bookingDates(sl validator.StructLevel) {
	b := sl.Current().Interface().(bookingRequest)
	if b.Start == nil || b.End == nil {
		return
	}
	now := v.now().Truncate(time.Second)

	if b.Start.Before(now) {
		sl.ReportError(b.Start, "start", "Start", "futureorpresent", "")
	}
	if !b.End.After(now) {
		sl.ReportError(b.End, "end", "End", "future", "")
	}
	if !b.Start.Before(b.End.Time) {
		sl.ReportError(b.Start, "start", "Start", "beforeend", "")
	}
}

// Struct validates s and returns a domain.ErrValidation describing every
// failed field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "notblank":
		return field + " must not be blank"
	case "email":
		return field + " must be a valid email"
	case "gt":
		return field + " must be positive"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "futureorpresent":
		return field + " must not be in the past"
	case "future":
		return field + " must be in the future"
	case "beforeend":
		return "start must be before end"
	case "bookingstate":
		return fmt.Sprintf("Unknown state: %v", fe.Value())
	default:
		return fmt.Sprintf("%s failed on %s", field, fe.Tag())
	}
}
