// Package domain defines the typed projections of Pipedrive records.
// Raw CRM payloads are loosely-typed maps keyed by long opaque field
// hashes; they are projected into these structs once, at the ingestion
// boundary, before any business logic runs.
package domain

import (
	"errors"
	"strconv"
	"strings"
)

// Person is one CRM contact after projection.
type Person struct {
	ID              int64
	Name            string
	Email           string
	OrgID           int64
	OrgName         string
	CustomerTypeID  string
	JobTitle        string
	DateAdded       string
	ActivitiesCount *int
}

// Organization is one CRM organisation after projection.
type Organization struct {
	ID          int64
	Name        string
	PeopleCount int
}

// FieldOption maps a CRM option ID to its display label.
type FieldOption struct {
	ID    string
	Label string
}

// FieldDefinition is one custom-field definition with its options.
type FieldDefinition struct {
	Key     string
	Name    string
	Options []FieldOption
}

// FieldKeys names the opaque person custom-field keys to project.
type FieldKeys struct {
	CustomerType string
	JobTitle     string
	DateAdded    string
}

var ErrFieldNotFound = errors.New("field_not_found")

// ProjectPerson maps one raw person record onto a typed Person. Missing
// or unexpectedly shaped values project to zero values, never errors:
// the analytics pipeline treats absent attributes as sentinels.
func ProjectPerson(raw map[string]any, keys FieldKeys) Person {
	person := Person{
		ID:             asInt64(raw["id"]),
		Name:           asString(raw["name"]),
		Email:          strings.ToLower(primaryEmail(raw["email"])),
		CustomerTypeID: asOptionID(raw[keys.CustomerType]),
		JobTitle:       asString(raw[keys.JobTitle]),
		DateAdded:      asString(raw[keys.DateAdded]),
	}

	switch org := raw["org_id"].(type) {
	case map[string]any:
		person.OrgID = asInt64(org["value"])
		person.OrgName = asString(org["name"])
	default:
		person.OrgID = asInt64(org)
	}

	if count, ok := raw["activities_count"]; ok {
		value := int(asInt64(count))
		person.ActivitiesCount = &value
	}
	return person
}

// ProjectOrganization maps one raw organisation record.
func ProjectOrganization(raw map[string]any) Organization {
	return Organization{
		ID:          asInt64(raw["id"]),
		Name:        asString(raw["name"]),
		PeopleCount: int(asInt64(raw["people_count"])),
	}
}

// ProjectFieldDefinition maps one raw field-definition record including
// its options array.
func ProjectFieldDefinition(raw map[string]any) FieldDefinition {
	def := FieldDefinition{
		Key:  asString(raw["key"]),
		Name: asString(raw["name"]),
	}
	options, _ := raw["options"].([]any)
	for _, entry := range options {
		option, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		def.Options = append(def.Options, FieldOption{
			ID:    asOptionID(option["id"]),
			Label: asString(option["label"]),
		})
	}
	return def
}

// primaryEmail handles the two shapes Pipedrive uses for emails: a bare
// string, or an array of {value, primary} objects.
func primaryEmail(raw any) string {
	switch value := raw.(type) {
	case string:
		return strings.TrimSpace(value)
	case []any:
		var first string
		for _, entry := range value {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			address := strings.TrimSpace(asString(item["value"]))
			if address == "" {
				continue
			}
			if first == "" {
				first = address
			}
			if primary, _ := item["primary"].(bool); primary {
				return address
			}
		}
		return first
	default:
		return ""
	}
}

// asOptionID normalizes option IDs, which arrive as JSON numbers or
// strings, into the string keys the mapping tables use.
func asOptionID(raw any) string {
	switch value := raw.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatInt(int64(value), 10)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		return ""
	}
}

func asString(raw any) string {
	value, _ := raw.(string)
	return strings.TrimSpace(value)
}

func asInt64(raw any) int64 {
	switch value := raw.(type) {
	case float64:
		return int64(value)
	case int:
		return int64(value)
	case int64:
		return value
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
