// Package domain defines core business types for the storefront client.
package domain

import "github.com/shopspring/decimal"

// Product is a catalog record as returned by the backend. Products are
// owned by the remote catalog service and immutable on the client; each
// fetch supersedes the previous list wholesale.
type Product struct {
	ID       string          `json:"_id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Cost     decimal.Decimal `json:"cost"`
	Rating   int             `json:"rating"`
	ImageURL string          `json:"image"`
}
