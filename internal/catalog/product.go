package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateID = errors.New("product id already used")
	ErrNotFound    = errors.New("product not found")
)

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Description *string  `json:"description,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	Category    *string  `json:"category,omitempty"`
}

// PatchFrom builds a patch that overwrites every mutable field of p.
func PatchFrom(p Product) Patch {
	return Patch{
		Name:        &p.Name,
		Price:       &p.Price,
		Image:       &p.Image,
		Description: &p.Description,
		Stock:       &p.Stock,
		Category:    &p.Category,
	}
}

func (p *Product) apply(patch Patch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
}

// LoadError reports a seed document that could not be fetched or decoded.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("catalog: load seed from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
