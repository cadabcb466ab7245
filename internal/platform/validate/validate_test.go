package validate

import (
	"fmt"
	"testing"
)

type sample struct {
	Name   string  `json:"name" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
	Date   string  `json:"date" validate:"required,datetime=2006-01-02"`
	Kind   string  `json:"kind" validate:"omitempty,oneof=calculated direct"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	issues := Struct(sample{Date: "13/01/2024", Kind: "other"})
	got := map[string]string{}
	for _, issue := range issues {
		got[issue.Field] = issue.Reason
	}
	want := map[string]string{
		"name":   "is required",
		"amount": "must be greater than 0",
		"date":   "must be a date in 2006-01-02 format",
		"kind":   "must be one of: calculated, direct",
	}
	for field, reason := range want {
		if got[field] != reason {
			t.Fatalf("field %s: expected %q, got %q", field, reason, got[field])
		}
	}
}

func TestStructValid(t *testing.T) {
	if issues := Struct(sample{Name: "x", Amount: 1, Date: "2024-01-13"}); issues.Err() != nil {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestIssuesErrSortsAndWraps(t *testing.T) {
	var issues Issues
	issues.Add("b", "second")
	issues.Required("a", "  ")
	issues.Add("c", "")

	err := fmt.Errorf("create: %w", issues.Err())
	verr, ok := AsError(err)
	if !ok {
		t.Fatal("expected validation error")
	}
	if len(verr.Issues) != 2 || verr.Issues[0].Field != "a" || verr.Issues[1].Field != "b" {
		t.Fatalf("unexpected issues: %+v", verr.Issues)
	}
}

func TestEmptyIssuesIsNil(t *testing.T) {
	var issues Issues
	if issues.Err() != nil {
		t.Fatal("expected nil error")
	}
}
