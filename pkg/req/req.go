package req

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ErrEmptyBody тело запроса отсутствует
var ErrEmptyBody = errors.New("request body is empty")

// Ordered реализуют элементы, для которых действует правило slotorder
type Ordered interface {
	Ordered() bool
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator возвращает общий экземпляр валидатора с зарегистрированными правилами
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// В сообщениях используются имена полей из json-тегов
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("slotorder", slotOrder)
	})
	return validate
}

// slotOrder проверяет, что каждый элемент среза упорядочен (начало раньше конца)
func slotOrder(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < field.Len(); i++ {
		item, ok := field.Index(i).Interface().(Ordered)
		if !ok || !item.Ordered() {
			return false
		}
	}
	return true
}

// Decode декодирует JSON в структуру типа T.
func Decode[T any](body io.Reader) (T, error) {
	var payload T
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return payload, ErrEmptyBody
		}
		return payload, err
	}
	return payload, nil
}

// IsValid валидирует структуру типа T.
func IsValid[T any](payload T) error {
	return Validator().Struct(payload)
}

// Bind декодирует тело gin-запроса. Пустое тело допустимо, если allowEmpty.
func Bind[T any](c *gin.Context, allowEmpty bool) (T, error) {
	payload, err := Decode[T](c.Request.Body)
	if errors.Is(err, ErrEmptyBody) && allowEmpty {
		return payload, nil
	}
	return payload, err
}

// Describe превращает ошибку валидации в короткое сообщение для клиента
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, describeField(fe))
	}
	return "Invalid fields: " + strings.Join(fields, ", ")
}

func describeField(fe validator.FieldError) string {
	// Namespace вида NewCourse.slots[0].status, первый сегмент отбрасываем
	name := fe.Namespace()
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}

	switch fe.Tag() {
	case "slotorder":
		return fmt.Sprintf("%s (startTime must be before endTime)", name)
	case "url":
		return fmt.Sprintf("%s (must be a URL)", name)
	case "gt":
		return fmt.Sprintf("%s (must be greater than %s)", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s (must be one of: %s)", name, fe.Param())
	}
	return name
}
