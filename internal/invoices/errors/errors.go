package errors

import "errors"

var (
	ErrSettingsNotFound = errors.New("invoice settings not found")

	ErrLogoUnreadable = errors.New("logo is not a readable PNG or JPEG image")
)
