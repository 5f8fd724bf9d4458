package utils

import (
	"reflect"
	"strings"
	"time"
)

// isoLayout matches the millisecond precision of the timestamps already stored
// in the seed data (2024-01-01T12:00:00.000Z).
const isoLayout = "2006-01-02T15:04:05.000Z"

func FormatEpoch(millis int64) string {
	return time.UnixMilli(millis).
		UTC().
		Format(time.RFC3339)
}

func ISOTimestamp(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// FileTimestamp is ISOTimestamp with ':' and '.' replaced, safe for file names.
func FileTimestamp(t time.Time) string {
	return strings.NewReplacer(":", "-", ".", "-").Replace(ISOTimestamp(t))
}

// IsTruthy reads flags such as ?paged=1 or ?persist=true.
func IsTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "sim":
		return true
	}
	return false
}

// Sanitize trims every string, *string and []string field of the struct o
// points to.
func Sanitize(o any) {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		panic("sanitize: expected pointer to struct")
	}

	v = v.Elem()
	if v.Kind() != reflect.Struct {
		panic("sanitize: expected struct")
	}

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(sanitizeString(field.String()))

		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.String {
				field.Elem().SetString(sanitizeString(field.Elem().String()))
			}

		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					field.Index(j).SetString(sanitizeString(field.Index(j).String()))
				}
			}
		}
	}
}

func sanitizeString(s string) string {
	return strings.TrimSpace(s)
}
