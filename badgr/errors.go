package badgr

import "errors"

var (
	// Entity state errors.
	ErrUnboundEntity     = errors.New("entity has no entity id")
	ErrNotFound          = errors.New("entity not found")
	ErrUnknownEntityType = errors.New("unknown entity type")

	// Badge-name index errors.
	ErrDuplicateBadgeName    = errors.New("badge name already exists for issuer")
	ErrMissingBadgeReference = errors.New("could not resolve a badgeclass entity id")

	// Client-side validation errors.
	ErrMissingCriteria        = errors.New("at least one of criteria text and criteria url is required")
	ErrInvalidStaffAction     = errors.New("staff action must be one of add, modify or remove")
	ErrInvalidStaffRole       = errors.New("staff role must be one of owner, editor or staff")
	ErrUnsupportedImageFormat = errors.New("image format not supported")
	ErrEmailRequired          = errors.New("email is required to create an account")
	ErrPasswordRequired       = errors.New("password is required to create an account")
)
