package validation

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"shift-scheduler/internal/entities"
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("entity_id", isEntityID); err != nil {
		return err
	}
	if err := v.RegisterValidation("shift", isShift); err != nil {
		return err
	}
	return nil
}

// isEntityID - все ссылки на другие записи хранятся как UUID
func isEntityID(fl validator.FieldLevel) bool {
	_, err := uuid.Parse(fl.Field().String())
	return err == nil
}

// isShift - только ночь (0) или день (1)
func isShift(fl validator.FieldLevel) bool {
	return entities.Shift(fl.Field().Int()).IsValid()
}
