package utils

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// MaxAvatarSizeBytes is the upload ceiling for avatar images (1 GiB).
const MaxAvatarSizeBytes = 1 * 1024 * 1024 * 1024

var allowedAvatarExtensions = map[string]bool{
	".jpeg": true,
	".png":  true,
	".jpg":  true,
	".webm": true,
}

// FieldErrors maps a request field to a human-readable message.
type FieldErrors map[string]string

// ValidateStruct runs the validate tags on a request payload and converts
// failures into a field→message map.
func ValidateStruct(s interface{}) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	out := FieldErrors{}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		out["_"] = "invalid request"
		return out
	}
	for _, fe := range ve {
		field := jsonFieldName(fe)
		switch fe.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required", field)
		case "email":
			out[field] = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			out[field] = fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		case "max":
			out[field] = fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
		case "eqfield":
			out[field] = "Passwords must match."
		default:
			out[field] = fmt.Sprintf("validation failed on %s for tag '%s'", field, fe.Tag())
		}
	}
	return out
}

// jsonFieldName reports the payload field name rather than the Go struct
// field so errors line up with what the client sent.
func jsonFieldName(fe validator.FieldError) string {
	// StructNamespace is "Type.Field"; keep the field part and snake_case it.
	name := fe.Field()
	var sb strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r + ('a' - 'A'))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ValidateAvatar enforces the extension allow-list and size ceiling on an
// uploaded avatar. filename and size come from the multipart header.
func ValidateAvatar(filename string, size int64) FieldErrors {
	out := FieldErrors{}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedAvatarExtensions[ext] {
		out["avatar"] = "avatar must be one of: jpeg, png, jpg, webm"
	}
	if size > MaxAvatarSizeBytes {
		out["avatar"] = "Image file too large ( > 1GB )"
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
