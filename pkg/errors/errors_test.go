package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("mongo down")
	err := Wrap(CodeDependency, cause, "insert order")

	if !stdErrors.Is(err, cause) {
		t.Fatalf("expected wrapped error to unwrap to cause")
	}
	if got := CodeOf(fmt.Errorf("outer: %w", err)); got != CodeDependency {
		t.Fatalf("expected dependency code through fmt wrapping, got %s", got)
	}
	if CodeOf(cause) != CodeInternal {
		t.Fatalf("untyped errors should report internal")
	}
	if !HasCode(err, CodeDependency) || HasCode(nil, CodeDependency) {
		t.Fatalf("HasCode mismatch")
	}
}

func TestWithDetailsOnNil(t *testing.T) {
	var e *Error
	if e.WithDetails("x") != nil {
		t.Fatalf("expected nil receiver to stay nil")
	}
	if e.Code() != CodeInternal {
		t.Fatalf("nil error should report internal code")
	}
}

func TestDumpCapturesPostgresFields(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "order_documents_pkey", TableName: "order_documents", Message: "duplicate key"}
	d := Dump(Wrap(CodeDependency, pgErr, "insert order"))
	if d.Code != CodeDependency {
		t.Fatalf("expected code in dump, got %s", d.Code)
	}
	if d.PGCode != "23505" || d.PGTable != "order_documents" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected two chain entries, got %d", len(d.Chain))
	}

	pqErr := &pq.Error{Code: "42P01", Table: "order_documents", Message: "relation does not exist"}
	d = Dump(fmt.Errorf("query: %w", pqErr))
	if d.PGCode != "42P01" || d.PGMessage != "relation does not exist" {
		t.Fatalf("unexpected pq fields %+v", d)
	}

	if Dump(nil).TopMessage != "" {
		t.Fatalf("expected empty dump for nil")
	}
}
