package enums

import "testing"

func TestParseCopyState(t *testing.T) {
	state, err := ParseCopyState("in_library")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if state != CopyStateInLibrary {
		t.Fatalf("unexpected state %s", state)
	}
	if _, err := ParseCopyState("IN_LIBRARY"); err == nil {
		t.Fatalf("parse should fail closed on unknown casing")
	}
	if _, err := ParseCopyState(""); err == nil {
		t.Fatalf("parse should fail on empty input")
	}
}

func TestParseLoanStatus(t *testing.T) {
	for _, raw := range []string{"requested", "approved", "out", "returned"} {
		status, err := ParseLoanStatus(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if !status.IsValid() {
			t.Fatalf("parsed status %s should be valid", status)
		}
	}
	if _, err := ParseLoanStatus("lost"); err == nil {
		t.Fatalf("unknown status should fail")
	}
}

func TestParseMediaType(t *testing.T) {
	if _, err := ParseMediaType("book"); err != nil {
		t.Fatalf("book should parse: %v", err)
	}
	if _, err := ParseMediaType("vinyl"); err == nil {
		t.Fatalf("unknown media type should fail")
	}
}

func TestParseIdentifierType(t *testing.T) {
	if _, err := ParseIdentifierType("isbn13"); err != nil {
		t.Fatalf("isbn13 should parse: %v", err)
	}
	if _, err := ParseIdentifierType("upc"); err == nil {
		t.Fatalf("unknown identifier type should fail")
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("librarian")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if role != UserRoleLibrarian {
		t.Fatalf("unexpected role %s", role)
	}
	if _, err := ParseUserRole("teacher"); err == nil {
		t.Fatalf("unknown role should fail")
	}
}
