// Package catalog defines the product record exchanged with the
// sheets-api plugin and its fixed grid column layout.
package catalog

import "encoding/json"

// Product mirrors one row of the grid and one element of the remote
// `data` array. Prices travel as strings (Woo convention), stock and id
// come back as either string or number depending on the store, so both
// pass through flexString.
type Product struct {
	ID           string `json:"id"`
	Type         string `json:"type"` // "simple","variable","variation"
	ParentID     string `json:"parent_id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Attributes   string `json:"attributes"`
	RegularPrice string `json:"regular_price"`
	SalePrice    string `json:"sale_price"`
	StockQty     string `json:"stock_quantity"`
	Status       string `json:"status"` // "publish","draft","trash"
}

// wireProduct absorbs the loose typing of the remote payload before
// normalizing into Product.
type wireProduct struct {
	ID           flexString `json:"id"`
	Type         string     `json:"type"`
	ParentID     flexString `json:"parent_id"`
	Name         string     `json:"name"`
	SKU          string     `json:"sku"`
	Attributes   string     `json:"attributes"`
	RegularPrice flexString `json:"regular_price"`
	SalePrice    flexString `json:"sale_price"`
	StockQty     flexString `json:"stock_quantity"`
	Status       string     `json:"status"`
}

func (p *Product) UnmarshalJSON(b []byte) error {
	var w wireProduct
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = Product{
		ID:           string(w.ID),
		Type:         w.Type,
		ParentID:     string(w.ParentID),
		Name:         w.Name,
		SKU:          w.SKU,
		Attributes:   w.Attributes,
		RegularPrice: string(w.RegularPrice),
		SalePrice:    string(w.SalePrice),
		StockQty:     string(w.StockQty),
		Status:       w.Status,
	}
	return nil
}
