package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrProductNotFound is returned when a barcode is not in the product registry
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateBarcode is returned when registering a barcode that already exists
	ErrDuplicateBarcode = errors.New("barcode already registered")

	// ErrMarketplaceAPIFailure is returned when the marketplace search API request fails
	ErrMarketplaceAPIFailure = errors.New("marketplace API request failed")

	// ErrSigningKeyMissing is returned when a request would be signed without keys
	ErrSigningKeyMissing = errors.New("marketplace signing keys are not configured")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrRegistryUnavailable is returned when the product registry backend fails
	ErrRegistryUnavailable = errors.New("product registry unavailable")
)
