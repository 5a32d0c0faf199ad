package domain

import "github.com/shopspring/decimal"

type Product struct {
	Record
	CategoryID  string          `json:"categoryId"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description,omitempty"`
	ImageKey    string          `json:"-"`
	Price       decimal.Decimal `json:"price"`
	Available   bool            `json:"available"`
}
