package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()

	// Custom validations
	v.RegisterValidation("supported_media", validateMediaType)

	return &Validator{
		validate: v,
	}
}

func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// Desteklenen medya formatlarını kontrol et
func validateMediaType(fl validator.FieldLevel) bool {
	return SupportedMediaType(fl.Field().String())
}

func SupportedMediaType(mimeType string) bool {
	supportedTypes := map[string]bool{
		"image/jpeg":      true,
		"image/png":       true,
		"image/gif":       true,
		"image/webp":      true,
		"video/mp4":       true,
		"video/webm":      true,
		"video/quicktime": true,
	}
	return supportedTypes[strings.ToLower(mimeType)]
}
