package service

import "errors"

var (
	ErrDrainInProgress = errors.New("sync queue drain already in progress")
	ErrEmptyCollection = errors.New("collection name is required")
	ErrEmptyRecordID   = errors.New("record id is required")

	ErrInvalidDataProvided = errors.New("invalid data provided")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrEmptySubject            = errors.New("token subject is required")
	ErrVersionIsNotSpecified   = errors.New("app version is not specified")
)
