package helpers

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go-restaurant-ordering/apperr"
	"go-restaurant-ordering/models"

	"github.com/go-playground/validator"
)

const (
	FieldPhone          = "phone"
	FieldPickupTime     = "pickupTime"
	FieldIdentification = "identification"
)

const (
	MsgInvalidPhone     = "請輸入有效的10位手機號碼 (09開頭)"
	MsgInvalidPickup    = "請選擇有效的取餐時間 (30分鐘後至7天內)"
	MsgNeedsIdentity    = "請輸入手機號碼，或在 LINE App 中開啟以查詢。"
	MsgEmptyCart        = "購物車是空的，請添加餐點"
	pickupMinLead       = 29 * time.Minute
	pickupMaxLead       = 7 * 24 * time.Hour
	defaultPickupOffset = 30 * time.Minute
)

var mobilePattern = regexp.MustCompile(`^09\d{8}$`)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+fe[f])
	}
	return strings.Join(parts, "; ")
}

func (fe FieldErrors) Unwrap() error { return apperr.ErrValidation }

// FormValidator checks the order and history forms. The clock is injectable
// so the pickup window can be tested at its edges.
type FormValidator struct {
	validate *validator.Validate
	now      func() time.Time
	loc      *time.Location
}

type orderFields struct {
	Phone      string `validate:"twmobile"`
	PickupTime string `validate:"pickupwindow"`
}

var fieldMessages = map[string]struct{ field, msg string }{
	"Phone":      {FieldPhone, MsgInvalidPhone},
	"PickupTime": {FieldPickupTime, MsgInvalidPickup},
}

func NewFormValidator(loc *time.Location, now func() time.Time) *FormValidator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	fv := &FormValidator{validate: validator.New(), now: now, loc: loc}
	mustRegister(fv.validate, "twmobile", func(fl validator.FieldLevel) bool {
		return mobilePattern.MatchString(fl.Field().String())
	})
	mustRegister(fv.validate, "pickupwindow", func(fl validator.FieldLevel) bool {
		return fv.pickupInWindow(fl.Field().String())
	})
	return fv
}

// mustRegister panics when a custom tag cannot be registered, like
// regexp.MustCompile does for a bad pattern.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("helpers: register validation %q: %v", tag, err))
	}
}

func (fv *FormValidator) Location() *time.Location { return fv.loc }

// ValidPhone reports whether phone is 09 followed by eight digits.
func (fv *FormValidator) ValidPhone(phone string) bool {
	return fv.validate.Var(phone, "twmobile") == nil
}

// ValidPickupTime reports whether value lies in (now+29m, now+7d].
func (fv *FormValidator) ValidPickupTime(value string) bool {
	return fv.validate.Var(value, "pickupwindow") == nil
}

func (fv *FormValidator) pickupInWindow(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	selected, err := models.ParseTimestamp(value, fv.loc)
	if err != nil {
		return false
	}
	now := fv.now()
	return selected.After(now.Add(pickupMinLead)) && !selected.After(now.Add(pickupMaxLead))
}

// ValidateDraft runs every submission check. Field problems come back as
// FieldErrors; an empty cart is reported separately with apperr.ErrEmptyCart
// because it is shown as a notification rather than next to a field.
func (fv *FormValidator) ValidateDraft(draft models.DraftOrder) (FieldErrors, error) {
	fieldErrs := FieldErrors{}
	err := fv.validate.Struct(orderFields{Phone: draft.CustomerPhone, PickupTime: draft.PickupTime})
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if m, ok := fieldMessages[fe.StructField()]; ok {
				fieldErrs[m.field] = m.msg
			}
		}
	} else if err != nil {
		return nil, err
	}
	if len(draft.Lines) == 0 {
		return fieldErrs, apperr.ErrEmptyCart
	}
	if len(fieldErrs) > 0 {
		return fieldErrs, fieldErrs
	}
	return nil, nil
}

// ValidateHistoryQuery checks the history search inputs. hasIdentity is true
// when the visitor's messaging identity is known.
func (fv *FormValidator) ValidateHistoryQuery(phone string, hasIdentity bool) FieldErrors {
	if phone == "" && !hasIdentity {
		return FieldErrors{FieldIdentification: MsgNeedsIdentity}
	}
	if phone != "" && !fv.ValidPhone(phone) {
		return FieldErrors{FieldPhone: MsgInvalidPhone}
	}
	return nil
}

// DefaultPickupTime is the form's initial value: thirty minutes from now in
// local wall-clock minutes.
func (fv *FormValidator) DefaultPickupTime() string {
	return fv.now().In(fv.loc).Add(defaultPickupOffset).Format(models.PickupLayout)
}

// PickupBounds are the min and max attributes for the pickup time input.
func (fv *FormValidator) PickupBounds() (min, max string) {
	now := fv.now().In(fv.loc)
	return now.Add(defaultPickupOffset).Format(models.PickupLayout), now.Add(pickupMaxLead).Format(models.PickupLayout)
}

// DefaultHistoryRange is the last seven days, as YYYY-MM-DD strings.
func (fv *FormValidator) DefaultHistoryRange() (start, end string) {
	today := fv.now().In(fv.loc)
	return today.AddDate(0, 0, -7).Format("2006-01-02"), today.Format("2006-01-02")
}
