package validators

import (
	"context"
	"regexp"

	"github.com/MKhiriev/go-offline-sync/models"
)

// Field name constants used to specify which fields should be validated.
const (
	// FieldCollection targets the collection name of a record reference.
	FieldCollection = "collection"

	// FieldRecordID targets the id of a record reference or record body.
	FieldRecordID = "record_id"

	// FieldVersion targets the expected version of a record reference.
	FieldVersion = "version"

	// FieldBody targets the top-level keys of a record body.
	FieldBody = "body"

	// FieldPaging targets limit and offset of query options.
	FieldPaging = "paging"

	// FieldQueryFields targets orderBy and filter keys of query options.
	FieldQueryFields = "query_fields"
)

var (
	collectionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,63}$`)
	fieldNamePattern  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// RecordValidator validates record references, record bodies and query
// options of the collection API.
type RecordValidator struct {
}

// NewRecordValidator returns a RecordValidator as a Validator.
func NewRecordValidator() Validator {
	return &RecordValidator{}
}

// Validate dispatches on the dynamic type of obj. Supported types are
// models.RecordRef, models.Record and models.QueryOptions, as values or
// pointers. Without fields a default set is checked.
func (v *RecordValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.RecordRef:
		return v.validateRef(value, fields...)
	case *models.RecordRef:
		return v.validateRef(*value, fields...)

	case models.Record:
		return v.validateRecord(value, fields...)
	case *models.Record:
		return v.validateRecord(*value, fields...)

	case models.QueryOptions:
		return v.validateQuery(value, fields...)
	case *models.QueryOptions:
		return v.validateQuery(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// validateRef checks collection, id and version by default.
func (v *RecordValidator) validateRef(ref models.RecordRef, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCollection, FieldRecordID, FieldVersion}
	}

	for _, f := range fields {
		switch f {
		case FieldCollection:
			if !collectionPattern.MatchString(ref.Collection) {
				return ErrInvalidCollection
			}
		case FieldRecordID:
			if err := validateID(ref.ID); err != nil {
				return err
			}
		case FieldVersion:
			if ref.Version < 0 {
				return ErrInvalidVersion
			}
		default:
			return ErrUnknownField
		}
	}
	return nil
}

// validateRecord checks the body keys by default. FieldRecordID additionally
// requires a server-usable id in the body.
func (v *RecordValidator) validateRecord(record models.Record, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldBody}
	}

	for _, f := range fields {
		switch f {
		case FieldBody:
			if len(record) == 0 {
				return ErrEmptyRecord
			}
			for key := range record {
				if !fieldNamePattern.MatchString(key) {
					return ErrInvalidFieldName
				}
			}
		case FieldRecordID:
			if err := validateID(record.ID()); err != nil {
				return err
			}
		case FieldVersion:
			if record.Version() < 0 {
				return ErrInvalidVersion
			}
		default:
			return ErrUnknownField
		}
	}
	return nil
}

// validateQuery checks paging and field names by default.
func (v *RecordValidator) validateQuery(opts models.QueryOptions, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldPaging, FieldQueryFields}
	}

	for _, f := range fields {
		switch f {
		case FieldPaging:
			if opts.Limit < 0 || opts.Offset < 0 {
				return ErrInvalidPaging
			}
		case FieldQueryFields:
			if opts.OrderBy != "" && !fieldNamePattern.MatchString(opts.OrderBy) {
				return ErrInvalidFieldName
			}
			for key := range opts.Filter {
				if !fieldNamePattern.MatchString(key) {
					return ErrInvalidFieldName
				}
			}
		default:
			return ErrUnknownField
		}
	}
	return nil
}

func validateID(id string) error {
	if id == "" || len(id) > 128 {
		return ErrInvalidRecordID
	}
	if models.IsTempID(id) {
		return ErrTempRecordID
	}
	return nil
}
