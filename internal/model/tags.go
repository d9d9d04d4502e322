package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Tags : множество тегов, в БД хранится строкой через запятую
type Tags []string

// ParseTags : разбирает строку "a, b,,c" в набор без пустых значений и повторов
func ParseTags(raw string) Tags {
	tags := Tags{}
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func (t Tags) String() string {
	return strings.Join(t, ",")
}

func (t Tags) Contains(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// Value : сериализация для database/sql
func (t Tags) Value() (driver.Value, error) {
	return ParseTags(t.String()).String(), nil
}

// Scan : десериализация из database/sql
func (t *Tags) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Tags{}
	case string:
		*t = ParseTags(v)
	case []byte:
		*t = ParseTags(string(v))
	default:
		return fmt.Errorf("неподдерживаемый тип тегов: %T", src)
	}
	return nil
}
