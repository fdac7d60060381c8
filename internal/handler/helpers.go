package handler

import (
	"errors"
	"net/http"
	"reflect"

	"invoicehub/internal/apierror"
	"invoicehub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError translates service-layer errors into HTTP responses.
// Not found hides tenancy; version and transition conflicts are 409;
// semantic rejections are 422; infrastructure failures are 503.
func writeServiceError(c *gin.Context, err error) {
	var (
		invalidTransition *service.InvalidTransitionError
		incomplete        *service.IncompleteDocumentError
		frozen            *service.DocumentFrozenError
		conflict          *service.ConflictError
		itemValidation    *service.ItemValidationError
	)
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Resource not found"))
	case errors.As(err, &conflict),
		errors.As(err, &invalidTransition),
		errors.As(err, &frozen):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.As(err, &incomplete),
		errors.As(err, &itemValidation),
		errors.Is(err, service.ErrMissingCurrency),
		errors.Is(err, service.ErrInvalidCurrency):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
