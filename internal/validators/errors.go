package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidCollection = errors.New("invalid collection name")
	ErrInvalidRecordID   = errors.New("invalid record id")
	ErrTempRecordID      = errors.New("temporary record ids are not accepted")
	ErrInvalidVersion    = errors.New("invalid version")
	ErrEmptyRecord       = errors.New("record body is required")
	ErrInvalidFieldName  = errors.New("invalid field name")
	ErrInvalidPaging     = errors.New("limit and offset must not be negative")
)
