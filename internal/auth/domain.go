package auth

import "github.com/go-playground/validator/v10"

// Form field names shared with the templates.
const (
	FieldName     = "nama"
	FieldUsername = "username"
	FieldPassword = "password"
)

type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type registerForm struct {
	Name     string `validate:"required,max=100"`
	Username string `validate:"required,min=3,max=50,alphanum"`
	Password string `validate:"required,min=6"`
}

type loginPageData struct {
	Error    string
	Username string
	Errors   map[string]string
}

type registerPageData struct {
	Error    string
	Name     string
	Username string
	Errors   map[string]string
}

var formFields = map[string]string{
	"Name":     FieldName,
	"Username": FieldUsername,
	"Password": FieldPassword,
}

var fieldLabels = map[string]string{
	"Name":     "Nama",
	"Username": "Username",
	"Password": "Kata sandi",
}

// fieldErrors turns validator failures into Indonesian messages keyed by form
// field.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		var msg string
		switch fe.Tag() {
		case "required":
			msg = label + " wajib diisi"
		case "min":
			msg = label + " minimal " + fe.Param() + " karakter"
		case "max":
			msg = label + " maksimal " + fe.Param() + " karakter"
		case "alphanum":
			msg = label + " hanya boleh huruf dan angka"
		default:
			msg = label + " tidak valid"
		}
		out[formFields[fe.Field()]] = msg
	}
	return out
}
