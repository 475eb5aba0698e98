package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/kproduct/pkg/validate"
	"github.com/shopspring/decimal"
)

type productInput struct {
	Name     string           `json:"name"     validate:"required,max=255"`
	Price    *decimal.Decimal `json:"price"    validate:"required,gte=0"`
	Size     string           `json:"size"     validate:"required,in=S,M,L,XL"`
	Quantity *int             `json:"quantity" validate:"required,gte=0"`
	Note     string           `json:"note"     validate:"nullable,min=3"`
}

func ptr[T any](v T) *T { return &v }

func TestValidInput(t *testing.T) {
	errs := validate.Struct(productInput{
		Name:     "Tee",
		Price:    ptr(decimal.RequireFromString("19.99")),
		Size:     "M",
		Quantity: ptr(0),
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(productInput{})
	for _, field := range []string{"name", "price", "size", "quantity"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("expected %s to be required, got %v", field, errs)
		}
	}
	if _, ok := errs["note"]; ok {
		t.Error("nullable note must not be reported")
	}
}

func TestZeroPointerIsPresent(t *testing.T) {
	type in struct {
		Quantity *int `json:"quantity" validate:"required,gte=0"`
	}
	if errs := validate.Struct(in{Quantity: ptr(0)}); validate.HasErrors(errs) {
		t.Errorf("expected zero quantity to pass: %v", errs)
	}
	if errs := validate.Struct(in{Quantity: ptr(-1)}); !validate.HasErrors(errs) {
		t.Error("expected negative quantity to fail")
	}
}

func TestDecimalBounds(t *testing.T) {
	type in struct {
		Price *decimal.Decimal `json:"price" validate:"required,gte=0"`
	}
	if errs := validate.Struct(in{Price: ptr(decimal.RequireFromString("-0.01"))}); !validate.HasErrors(errs) {
		t.Error("expected negative price to fail")
	}
	if errs := validate.Struct(in{Price: ptr(decimal.Zero)}); validate.HasErrors(errs) {
		t.Errorf("expected zero price to pass: %v", errs)
	}
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Age int `json:"age" validate:"gte=18,lte=120"`
	}
	if errs := validate.Struct(in{Age: 15}); !validate.HasErrors(errs) {
		t.Error("expected age < 18 to fail")
	}
	if errs := validate.Struct(in{Age: 25}); validate.HasErrors(errs) {
		t.Errorf("expected age 25 to pass, got: %v", errs)
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Status string `json:"status" validate:"required,in=PENDING,COMPLETED,CANCELLED"`
	}
	if errs := validate.Struct(in{Status: "SHIPPED"}); !validate.HasErrors(errs) {
		t.Error("expected invalid status to fail")
	}
	if errs := validate.Struct(in{Status: "CANCELLED"}); validate.HasErrors(errs) {
		t.Errorf("expected CANCELLED to pass: %v", errs)
	}
}

func TestMinAfterListDoesNotJoinList(t *testing.T) {
	type in struct {
		Code string `json:"code" validate:"required,min=2,in=AB,CD"`
	}
	if errs := validate.Struct(in{Code: "A"}); errs["code"] != "The code must be at least 2 characters." {
		t.Errorf("expected min failure, got %v", errs)
	}
	if errs := validate.Struct(in{Code: "CD"}); validate.HasErrors(errs) {
		t.Errorf("expected CD to pass: %v", errs)
	}
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Note string `json:"note" validate:"nullable,min=3"`
	}
	if errs := validate.Struct(in{Note: ""}); validate.HasErrors(errs) {
		t.Errorf("expected empty nullable to pass: %v", errs)
	}
	if errs := validate.Struct(in{Note: "ab"}); !validate.HasErrors(errs) {
		t.Error("expected short note to fail")
	}
}

func TestBetweenRule(t *testing.T) {
	type in struct {
		Score float64 `json:"score" validate:"between=0,100"`
	}
	if errs := validate.Struct(in{Score: 150}); !validate.HasErrors(errs) {
		t.Error("expected score > 100 to fail")
	}
	if errs := validate.Struct(in{Score: 75}); validate.HasErrors(errs) {
		t.Errorf("expected score 75 to pass: %v", errs)
	}
}

type withHook struct {
	Code string `json:"code" validate:"required"`
	Ref  *int64 `json:"ref"`
}

func (w withHook) Validate() map[string]string {
	if w.Ref == nil {
		return map[string]string{"ref": "The ref field is required.", "code": "hook"}
	}
	return nil
}

func TestValidatorHookMerged(t *testing.T) {
	errs := validate.Struct(&withHook{})
	if errs["ref"] == "" {
		t.Errorf("expected hook error for ref, got %v", errs)
	}
	if errs["code"] != "The code field is required." {
		t.Errorf("tag error must win over hook error, got %q", errs["code"])
	}
	if errs := validate.Struct(&withHook{Code: "x", Ref: ptr(int64(1))}); validate.HasErrors(errs) {
		t.Errorf("expected no errors: %v", errs)
	}
}
