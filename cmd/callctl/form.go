package main

import (
	"fmt"
	"net/url"
	"strings"
)

// parseFields turns repeated key=value flags into a form body
func parseFields(fields []string) (url.Values, error) {
	form := url.Values{}
	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("field %q must be key=value", field)
		}
		form.Add(key, value)
	}
	return form, nil
}

// callbackPath maps a callback kind to its route
func callbackPath(kind string) (string, error) {
	switch kind {
	case "status", "recording", "transcription", "validate":
		return "/api/voice/" + kind, nil
	default:
		return "", fmt.Errorf("unknown callback %q (status, recording, transcription, validate)", kind)
	}
}
