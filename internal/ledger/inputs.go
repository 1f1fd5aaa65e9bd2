package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/dmitrijs2005/officeledger/internal/models"
	"github.com/go-playground/validator/v10"
)

// NewUser is the input of AddUser.
type NewUser struct {
	Name      string      `json:"name" validate:"min=2"`
	Username  string      `json:"username" validate:"min=3"`
	Password  string      `json:"password" validate:"min=3"`
	Role      models.Role `json:"role" validate:"oneof=admin user"`
	Email     string      `json:"email,omitempty" validate:"omitempty,email"`
	AvatarURL string      `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

func (in NewUser) Validate() error { return validate(in) }

// UserPatch lists the user fields to overwrite. Nil fields are left as is.
type UserPatch struct {
	Name      *string      `json:"name,omitempty" validate:"omitempty,min=2"`
	Username  *string      `json:"username,omitempty" validate:"omitempty,min=3"`
	Password  *string      `json:"password,omitempty" validate:"omitempty,min=3"`
	Role      *models.Role `json:"role,omitempty" validate:"omitempty,oneof=admin user"`
	Email     *string      `json:"email,omitempty" validate:"omitempty,email"`
	AvatarURL *string      `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

func (p UserPatch) Validate() error { return validate(p) }

// NewItem is the input of AddItem.
type NewItem struct {
	Name         string           `json:"name" validate:"min=2"`
	Code         string           `json:"code" validate:"min=2"`
	Category     string           `json:"category" validate:"required"`
	Location     string           `json:"location" validate:"required"`
	Condition    models.Condition `json:"condition" validate:"oneof=good needs_repair broken"`
	Quantity     int              `json:"quantity" validate:"min=0"`
	Available    int              `json:"available" validate:"min=0,ltefield=Quantity"`
	Image        string           `json:"image,omitempty" validate:"omitempty,url"`
	PurchaseDate string           `json:"purchaseDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes        string           `json:"notes,omitempty"`
}

func (in NewItem) Validate() error { return validate(in) }

// ItemPatch lists the item fields to overwrite. Available is not checked
// against Quantity.
type ItemPatch struct {
	Name         *string           `json:"name,omitempty" validate:"omitempty,min=2"`
	Code         *string           `json:"code,omitempty" validate:"omitempty,min=2"`
	Category     *string           `json:"category,omitempty" validate:"omitempty,min=1"`
	Location     *string           `json:"location,omitempty" validate:"omitempty,min=1"`
	Condition    *models.Condition `json:"condition,omitempty" validate:"omitempty,oneof=good needs_repair broken"`
	Quantity     *int              `json:"quantity,omitempty" validate:"omitempty,min=0"`
	Available    *int              `json:"available,omitempty" validate:"omitempty,min=0"`
	Image        *string           `json:"image,omitempty" validate:"omitempty,url"`
	PurchaseDate *string           `json:"purchaseDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes        *string           `json:"notes,omitempty"`
}

func (p ItemPatch) Validate() error { return validate(p) }

// NewRequest is the input of CreateRequest.
type NewRequest struct {
	ItemID string `json:"itemId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
	Qty    int    `json:"qty" validate:"min=1"`
	Note   string `json:"note,omitempty"`
}

func (in NewRequest) Validate() error { return validate(in) }

// Approval is the result of ApproveRequest.
type Approval struct {
	Request models.Request
	Loan    models.Loan
}

var validate = newValidator()

func newValidator() func(any) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return func(in any) error {
		err := v.Struct(in)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
		errs := make([]error, 0, len(verrs))
		for _, fe := range verrs {
			errs = append(errs, common.Invalid(fe.Field(), reason(fe)))
		}
		return errors.Join(errs...)
	}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "ltefield":
		return "must not exceed quantity"
	case "datetime":
		return "must be a date in YYYY-MM-DD form"
	}
	return "failed " + fe.Tag() + " check"
}

// auditPayload renders a patch as the map stored on its audit entry.
func auditPayload(patch any) map[string]any {
	b, err := json.Marshal(patch)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil
	}
	return m
}

func optionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
