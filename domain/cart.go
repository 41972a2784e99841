package domain

import "github.com/shopspring/decimal"

// CartEntry is the server's sparse record of one product in a user's
// cart. The collection is unique by ProductID; order is insignificant.
type CartEntry struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// CartLineItem is the client-side join of a cart entry with its catalog
// product. It is a pure projection: rebuilt from scratch on every
// render, never mutated in place, never persisted.
type CartLineItem struct {
	Product
	Qty int `json:"qty"`
}

// MaterializeCart joins cart entries with the catalog into a dense,
// displayable line-item list. Output preserves catalog iteration order,
// not cart order. Entries referencing a product id absent from the
// catalog are dropped silently. Quantities are carried through
// uninterpreted; zero or negative values are not special-cased here.
// Pure function: nil or empty inputs yield an empty result.
func MaterializeCart(entries []CartEntry, catalog []Product) []CartLineItem {
	if len(entries) == 0 || len(catalog) == 0 {
		return nil
	}

	byID := make(map[string]CartEntry, len(entries))
	for _, e := range entries {
		byID[e.ProductID] = e
	}

	items := make([]CartLineItem, 0, len(entries))
	for _, p := range catalog {
		e, ok := byID[p.ID]
		if !ok {
			continue
		}
		items = append(items, CartLineItem{Product: p, Qty: e.Qty})
	}
	return items
}

// OrderTotal returns the sum of cost*qty over the given line items.
// Zero for an empty or nil list. Recomputed from scratch on every call;
// no running total is kept, so no drift is possible.
func OrderTotal(items []CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Cost.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return total
}

// InCart reports whether some entry references the given product id.
// Used to gate duplicate "add to cart" actions; quantity adjustments
// bypass this check.
func InCart(entries []CartEntry, productID string) bool {
	for _, e := range entries {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}
