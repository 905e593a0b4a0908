package user

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	MinLoginLen    = 3
	MaxLoginLen    = 32
	MinPasswordLen = 8
	// bcrypt игнорирует все после 72 байт.
	MaxPasswordLen = 72
)

var loginPattern = regexp.MustCompile(`^[\p{L}\p{N}_.-]+$`)

type Validator interface {
	ValidateRegister(login, password string) error
	ValidateLogin(login string) error
	ValidatePassword(password string) error
}

type credentials struct {
	Login    string `validate:"required,min=3,max=32,login"`
	Password string `validate:"required,min=8,max=72,strong"`
}

// PasswordValidator проверяет учетные данные по тегам структуры.
type PasswordValidator struct {
	validate *validator.Validate
}

func NewPasswordValidator() *PasswordValidator {
	v := validator.New()
	_ = v.RegisterValidation("login", func(fl validator.FieldLevel) bool {
		return loginPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strong", func(fl validator.FieldLevel) bool {
		return strongPassword(fl.Field().String())
	})
	return &PasswordValidator{validate: v}
}

func (v *PasswordValidator) ValidateRegister(login, password string) error {
	if err := v.ValidateLogin(login); err != nil {
		return fmt.Errorf("login validation failed: %w", err)
	}
	if err := v.ValidatePassword(password); err != nil {
		return fmt.Errorf("password validation failed: %w", err)
	}
	return nil
}

func (v *PasswordValidator) ValidateLogin(login string) error {
	return describe(v.validate.StructPartial(credentials{Login: login}, "Login"))
}

func (v *PasswordValidator) ValidatePassword(password string) error {
	return describe(v.validate.StructPartial(credentials{Password: password}, "Password"))
}

// describe превращает первую ошибку валидации в читаемое сообщение.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Field() + "." + fe.Tag() {
	case "Login.required", "Login.min":
		return fmt.Errorf("login must be at least %d characters", MinLoginLen)
	case "Login.max":
		return fmt.Errorf("login must be at most %d characters", MaxLoginLen)
	case "Login.login":
		return errors.New("login can only contain letters, digits, '_', '-', '.'")
	case "Password.required", "Password.min":
		return fmt.Errorf("password must be at least %d characters", MinPasswordLen)
	case "Password.max":
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLen)
	default:
		return errors.New("password must mix lower and upper case letters, digits and symbols")
	}
}

func strongPassword(password string) bool {
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return lower && upper && digit && special
}
