package catalog

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError describes admin input rejected before any store call.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Input is the raw admin form. Numbers arrive as float64 so that a
// fractional stock can be told apart from an integer one.
type Input struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Stock       float64 `json:"stock"`
	Category    string  `json:"category"`
}

func NormalizeInput(in Input) (Product, error) {
	p := Product{
		ID:          strings.TrimSpace(in.ID),
		Name:        strings.TrimSpace(in.Name),
		Image:       strings.TrimSpace(in.Image),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.ToLower(strings.TrimSpace(in.Category)),
	}

	switch {
	case p.ID == "":
		return Product{}, &ValidationError{Field: "id", Msg: "required"}
	case p.Name == "":
		return Product{}, &ValidationError{Field: "name", Msg: "required"}
	case p.Image == "":
		return Product{}, &ValidationError{Field: "image", Msg: "required"}
	case p.Description == "":
		return Product{}, &ValidationError{Field: "description", Msg: "required"}
	case p.Category == "":
		return Product{}, &ValidationError{Field: "category", Msg: "required"}
	}

	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price < 0 {
		return Product{}, &ValidationError{Field: "price", Msg: "must be a number >= 0"}
	}
	if math.IsNaN(in.Stock) || math.IsInf(in.Stock, 0) || in.Stock < 0 || in.Stock != math.Trunc(in.Stock) || in.Stock > math.MaxInt32 {
		return Product{}, &ValidationError{Field: "stock", Msg: "must be an integer >= 0"}
	}

	p.Price = in.Price
	p.Stock = int(in.Stock)
	return p, nil
}
