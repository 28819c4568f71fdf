package model

import "strings"

// Order is an incoming shop order.
type Order struct {
	ID    string `json:"id,omitempty"` // Optional, only used for log correlation
	Items []Item `json:"items"`
}

// Item is a single product line of an order.
type Item struct {
	Model   string   `json:"model"`   // Product model code (e.g., "X2-ABC")
	Options []Option `json:"options"` // Product options (colors)
}

// Option is a free-form product attribute.
type Option struct {
	Name  string `json:"name"`  // e.g., "Base_Color", "ring_1_top"
	Value string `json:"value"` // e.g., "RED", "blue"
}

// Normalized returns the option with name and value lowercased.
func (o Option) Normalized() Option {
	return Option{
		Name:  strings.ToLower(o.Name),
		Value: strings.ToLower(o.Value),
	}
}
