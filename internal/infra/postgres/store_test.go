package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
)

func TestIsViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: uniqueViolation, ConstraintName: "quiz_sessions_join_code_key"}
	wrapped := fmt.Errorf("insert: %w", dup)

	if !isViolation(wrapped, uniqueViolation, "quiz_sessions_join_code_key") {
		t.Fatalf("expected wrapped unique violation to match")
	}
	if !isViolation(dup, uniqueViolation, "") {
		t.Fatalf("expected empty constraint to match any name")
	}
	if isViolation(dup, uniqueViolation, "answers_participant_question_key") {
		t.Fatalf("constraint name must match when given")
	}
	if isViolation(dup, foreignKeyViolation, "") {
		t.Fatalf("code must match")
	}
	if isViolation(nil, uniqueViolation, "") {
		t.Fatalf("nil is not a violation")
	}
}
