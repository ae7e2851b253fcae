package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("mode", "must be study or exam", "timed")

	if err.Field != "mode" {
		t.Errorf("Expected field to be 'mode', got '%s'", err.Field)
	}

	if err.Message != "must be study or exam" {
		t.Errorf("Expected message to be 'must be study or exam', got '%s'", err.Message)
	}

	if err.Value != "timed" {
		t.Errorf("Expected value to be 'timed', got '%v'", err.Value)
	}

	expected := "validation error on field 'mode': must be study or exam"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("count", "must be at least 1", nil))
	expected := "validation failed: count must be at least 1"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("mode", "is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("select_count", "must be at least 1", "min", 0)

	if err.Rule != "min" {
		t.Errorf("Expected rule to be 'min', got '%s'", err.Rule)
	}

	if err.Field != "select_count" {
		t.Errorf("Expected field to be 'select_count', got '%s'", err.Field)
	}
}
