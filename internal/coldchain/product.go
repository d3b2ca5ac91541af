// Package coldchain holds the domain types of the advisor: the products and
// storage conditions a reading describes, the bounds the input form enforces,
// and the static safe temperature ranges used to flag alerts.
package coldchain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/coldchain-go/coldchain/internal/errors"
)

// Product is a dairy product type tracked by the advisor.
type Product string

const (
	ProductMilk             Product = "milk"
	ProductCurd             Product = "curd"
	ProductButter           Product = "butter"
	ProductCheese           Product = "cheese"
	ProductIceCream         Product = "ice-cream"
	ProductFlavoredBeverage Product = "flavored_beverage"
)

// Products lists every product in form order.
var Products = []Product{
	ProductMilk,
	ProductCurd,
	ProductButter,
	ProductCheese,
	ProductIceCream,
	ProductFlavoredBeverage,
}

// Packaging is the container the product is stored in.
type Packaging string

const (
	PackagingPlastic   Packaging = "plastic"
	PackagingGlass     Packaging = "glass"
	PackagingTetrapack Packaging = "tetrapack"
	PackagingMetal     Packaging = "metal"
)

// Packagings lists every packaging type in form order.
var Packagings = []Packaging{PackagingPlastic, PackagingGlass, PackagingTetrapack, PackagingMetal}

// Airflow is the operator's rating of air circulation around the stock.
type Airflow string

const (
	AirflowPoor     Airflow = "poor"
	AirflowModerate Airflow = "moderate"
	AirflowGood     Airflow = "good"
)

// Airflows lists every airflow rating in form order.
var Airflows = []Airflow{AirflowPoor, AirflowModerate, AirflowGood}

func (p Product) String() string   { return string(p) }
func (p Packaging) String() string { return string(p) }
func (a Airflow) String() string   { return string(a) }

// Valid reports whether p is one of Products.
func (p Product) Valid() bool { return slices.Contains(Products, p) }

// Valid reports whether p is one of Packagings.
func (p Packaging) Valid() bool { return slices.Contains(Packagings, p) }

// Valid reports whether a is one of Airflows.
func (a Airflow) Valid() bool { return slices.Contains(Airflows, a) }

// ParseProduct converts user input to a Product, ignoring case and surrounding space.
func ParseProduct(s string) (Product, error) {
	return parseEnum("product_type", s, Products)
}

// ParsePackaging converts user input to a Packaging.
func ParsePackaging(s string) (Packaging, error) {
	return parseEnum("packaging_type", s, Packagings)
}

// ParseAirflow converts user input to an Airflow rating.
func ParseAirflow(s string) (Airflow, error) {
	return parseEnum("airflow_rating", s, Airflows)
}

func parseEnum[T ~string](field, s string, allowed []T) (T, error) {
	v := T(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(allowed, v) {
		return v, nil
	}
	return "", &FieldError{
		Field:  field,
		Reason: fmt.Sprintf("%q is not one of %s", s, joinEnum(allowed)),
	}
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// FieldError reports a single input field outside its allowed values.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// ErrorCategory marks field errors as validation failures.
func (e *FieldError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryValidation
}

// IsValidationError reports whether err contains at least one FieldError.
func IsValidationError(err error) bool {
	var fe *FieldError
	return errors.As(err, &fe)
}
