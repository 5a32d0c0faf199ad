package domain

type Category struct {
	Record
	Name string `json:"name"`
	Slug string `json:"slug"`
}
