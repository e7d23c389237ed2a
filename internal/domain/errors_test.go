package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/vladislavdragonenkov/catalog/internal/domain"
)

func TestPersistenceError_WrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := domain.NewPersistenceError("save order", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is must reach the wrapped cause")
	}

	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatal("errors.As must recover *PersistenceError")
	}
	if pe.Op != "save order" {
		t.Errorf("expected op 'save order', got %q", pe.Op)
	}
}

func TestPersistenceError_SurvivesWrapping(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := fmt.Errorf("place order: %w", domain.NewPersistenceError("update order", cause))

	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatal("errors.As must find *PersistenceError through extra wrapping")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is must still reach the original cause")
	}
}

func TestIsNotFound(t *testing.T) {
	if !domain.IsNotFound(domain.ErrNotFound) {
		t.Error("ErrNotFound must be recognized")
	}
	if !domain.IsNotFound(fmt.Errorf("find order: %w", domain.ErrNotFound)) {
		t.Error("wrapped ErrNotFound must be recognized")
	}
	if domain.IsNotFound(domain.ErrEmptyOrder) {
		t.Error("unrelated errors must not be recognized as not-found")
	}
}

func TestCatalogValidation(t *testing.T) {
	cases := []struct {
		name  string
		check func() []error
		want  error
	}{
		{
			name:  "category without name",
			check: func() []error { c := domain.Category{}; return c.Validate() },
			want:  domain.ErrNameRequired,
		},
		{
			name: "product without category",
			check: func() []error {
				p := domain.Product{Name: "PS5"}
				return p.Validate()
			},
			want: domain.ErrCategoryRequired,
		},
		{
			name: "client without document",
			check: func() []error {
				c := domain.Client{Name: "Rodrigo"}
				return c.Validate()
			},
			want: domain.ErrDocumentRequired,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := tc.check()
			found := false
			for _, err := range errs {
				if errors.Is(err, tc.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %v among %v", tc.want, errs)
			}
		})
	}
}
