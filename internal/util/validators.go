package util

import (
	"thethought-backend/internal/model"

	"github.com/go-playground/validator/v10"
)

// ValidateVisibility 校验可见性取值
func ValidateVisibility(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", model.VisibilityPublic, model.VisibilityFollowers, model.VisibilityPrivate:
		return true
	}
	return false
}
