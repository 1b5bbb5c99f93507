// Package forms holds the user-facing forms and their field-level validation.
package forms

import (
	"errors"
	"fmt"
	"mime/multipart"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	RequiredMessage      = "This field is required."
	ContentPolicyMessage = "Do not mention the popular video hosting site."
	SlugMessage          = "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	SlugTakenMessage     = "Group with this slug already exists."
	UsernameMessage      = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	UsernameTakenMessage = "A user with that username already exists."
	InvalidChoiceMessage = "Select a valid choice. That choice is not one of the available choices."
	PasswordMismatch     = "The two password fields didn't match."
	CaptchaMessage       = "Wrong answer to the verification question."
	LoginMessage         = "Please enter a correct username and password."
)

// disallowedSite is rejected in any free-text field, case-insensitively.
const disallowedSite = "youtube"

var ErrContentPolicy = errors.New(ContentPolicyMessage)

var (
	slugRe     = regexp.MustCompile(`^[-_a-zA-Z0-9]+$`)
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
)

// CheckContent enforces the content policy on free text.
func CheckContent(text string) error {
	if strings.Contains(strings.ToLower(text), disallowedSite) {
		return ErrContentPolicy
	}
	return nil
}

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	e := &ValidationError{Fields: map[string]string{}}
	e.Add(field, message)
	return e
}

// Add keeps the first message reported for a field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type PostForm struct {
	Text       string                `form:"text" validate:"required,contentpolicy"`
	Group      string                `form:"group" validate:"omitempty,numeric"`
	ClearImage bool                  `form:"image-clear"`
	Image      *multipart.FileHeader `form:"-" validate:"-"`
}

type CommentForm struct {
	Text string `form:"text" validate:"required,contentpolicy"`
}

type GroupForm struct {
	Title       string `form:"title" validate:"required,max=200"`
	Slug        string `form:"slug" validate:"required,max=50,slug"`
	Description string `form:"description" validate:"contentpolicy"`
}

type SignupForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Password1 string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
	Captcha   string `form:"captcha" validate:"required"`
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("contentpolicy", func(fl validator.FieldLevel) bool {
		return CheckContent(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	return v
}

// Clean trims surrounding whitespace from the text fields of a form.
func Clean(form any) {
	switch f := form.(type) {
	case *PostForm:
		f.Text = strings.TrimSpace(f.Text)
		f.Group = strings.TrimSpace(f.Group)
	case *CommentForm:
		f.Text = strings.TrimSpace(f.Text)
	case *GroupForm:
		f.Title = strings.TrimSpace(f.Title)
		f.Slug = strings.TrimSpace(f.Slug)
		f.Description = strings.TrimSpace(f.Description)
	case *SignupForm:
		f.FirstName = strings.TrimSpace(f.FirstName)
		f.LastName = strings.TrimSpace(f.LastName)
		f.Username = strings.TrimSpace(f.Username)
		f.Captcha = strings.TrimSpace(f.Captcha)
	case *LoginForm:
		f.Username = strings.TrimSpace(f.Username)
	}
}

// Validate cleans the form and runs its field rules. It returns nil or a
// *ValidationError.
func Validate(form any) error {
	Clean(form)
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := &ValidationError{Fields: map[string]string{}}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), message(fe))
	}
	return verr
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return RequiredMessage
	case "contentpolicy":
		return ContentPolicyMessage
	case "slug":
		return SlugMessage
	case "username":
		return UsernameMessage
	case "numeric":
		return InvalidChoiceMessage
	case "eqfield":
		return PasswordMismatch
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	}
	return "Enter a valid value."
}
