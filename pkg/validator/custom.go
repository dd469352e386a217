package validator

import (
	"time"

	"github.com/go-playground/validator/v10"
)

func RegisterCustomValidations(validate *validator.Validate) {
	validate.RegisterValidation("radius_km", validateRadiusKM)
	validate.RegisterValidation("coordinates", validateCoordinates)
	validate.RegisterValidation("future", validateFuture)
}

func validateRadiusKM(fl validator.FieldLevel) bool {
	return fl.Field().Float() > 0
}

// validateCoordinates expects a [longitude, latitude] pair.
func validateCoordinates(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Len() != 2 {
		return false
	}
	return ValidLng(f.Index(0).Float()) && ValidLat(f.Index(1).Float())
}

func validateFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return t.After(time.Now())
}

func ValidLat(lat float64) bool { return lat >= -90 && lat <= 90 }

func ValidLng(lng float64) bool { return lng >= -180 && lng <= 180 }
