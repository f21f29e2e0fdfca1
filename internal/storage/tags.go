package storage

import (
	"database/sql"
	"encoding/json"
	"strings"
)

// decodeTags normalizes a stored tags column into an ordered tag list.
// Two encodings exist in the wild: the JSON array this code writes, and a
// legacy comma-joined string. Empty or unparseable input means no tags.
func decodeTags(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw.String), &tags); err == nil {
		if len(tags) == 0 {
			return nil
		}
		return tags
	}

	// Legacy comma-joined encoding.
	for _, part := range strings.Split(raw.String, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

// encodeTags serializes tags for storage. Writes always emit the JSON
// array encoding; nil stays NULL so absence survives a round trip.
func encodeTags(tags []string) any {
	if tags == nil {
		return nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return nil
	}
	return string(data)
}

// hasAllTags reports whether every wanted tag is present.
func hasAllTags(tags, wanted []string) bool {
	if len(tags) == 0 {
		return false
	}
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	for _, t := range wanted {
		if !set[t] {
			return false
		}
	}
	return true
}

// hasAnyTag reports whether at least one wanted tag is present.
func hasAnyTag(tags, wanted []string) bool {
	for _, t := range tags {
		for _, w := range wanted {
			if t == w {
				return true
			}
		}
	}
	return false
}

// validateTagFilters rejects the mutually exclusive filter pair.
func validateTagFilters(all, anyOf []string) error {
	if len(all) > 0 && len(anyOf) > 0 {
		return validationErr("tags_filter_include_all and tags_filter_include_any are mutually exclusive")
	}
	return nil
}
