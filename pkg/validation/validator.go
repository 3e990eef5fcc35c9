package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator - обертка для использования в Echo и в сервисах
type CustomValidator struct {
	validator *validator.Validate
}

// Validate реализует интерфейс echo.Validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Messages проверяет структуру и возвращает все нарушения в читаемом виде.
// Пустой результат - структура корректна.
func (cv *CustomValidator) Messages(i interface{}) []string {
	return Messages(cv.validator.Struct(i))
}

// New создает и настраивает валидатор
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// В сообщениях используем json-имена полей
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	registerNullTypes(v)

	// Если правило не зарегистрировалось — паникуем, сервер не должен стартовать
	if err := registerRules(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}

	return &CustomValidator{validator: v}
}

// Messages превращает ошибку валидатора в список сообщений.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, describe(fe))
	}
	return messages
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: обязательное поле", field)
	case "entity_id":
		return fmt.Sprintf("%s: неверный формат идентификатора %q", field, fmt.Sprint(fe.Value()))
	case "shift":
		return fmt.Sprintf("%s: смена должна быть 0 (ночь) или 1 (день)", field)
	case "datetime":
		return fmt.Sprintf("%s: ожидается дата в формате %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s: значение должно быть не меньше %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s: значение должно быть не больше %s", field, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s: не может совпадать с %s", field, fe.Param())
	}
	return fmt.Sprintf("%s: не прошло проверку %s", field, fe.Tag())
}
