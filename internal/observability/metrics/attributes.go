package metrics

import "go.opentelemetry.io/otel/attribute"

// FilterAttributes drops attributes with empty values so sparse labels
// never fan out instrument cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Value.Emit() == "" {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
