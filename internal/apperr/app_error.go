package apperr

import "github.com/lny-platform/product-catalog/pkg/zerror"

const (
	ValidationErrorCode  = "VALIDATION_FAILED"
	ProductNotFoundCode  = "PRODUCT_NOT_FOUND"
	StoreUnavailableCode = "STORE_UNAVAILABLE"
)

var (
	ValidationErr      = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	StoreErr           = zerror.NewInternalServerError(StoreUnavailableCode, "persistence operation failed")
)
