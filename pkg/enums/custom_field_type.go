package enums

import "fmt"

// CustomFieldType is the declared value type of a user-defined item attribute.
type CustomFieldType string

const (
	CustomFieldTypeText    CustomFieldType = "text"
	CustomFieldTypeNumber  CustomFieldType = "number"
	CustomFieldTypeDate    CustomFieldType = "date"
	CustomFieldTypeBoolean CustomFieldType = "boolean"
)

var validCustomFieldTypes = []CustomFieldType{
	CustomFieldTypeText,
	CustomFieldTypeNumber,
	CustomFieldTypeDate,
	CustomFieldTypeBoolean,
}

// String implements fmt.Stringer.
func (c CustomFieldType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CustomFieldType.
func (c CustomFieldType) IsValid() bool {
	for _, candidate := range validCustomFieldTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCustomFieldType converts raw input into a CustomFieldType.
func ParseCustomFieldType(value string) (CustomFieldType, error) {
	for _, candidate := range validCustomFieldTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid custom field type %q", value)
}
