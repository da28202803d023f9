package catalog

type colIdx int

// Do not reorder: the operators' sheets already use this layout.
const (
	ColumnID colIdx = iota
	ColumnType
	ColumnParentID
	ColumnName
	ColumnSKU
	ColumnAttributes
	ColumnRegularPrice
	ColumnSalePrice
	ColumnStock
	ColumnStatus

	columnCount
)

// HeaderRow is row 1 of the grid, in column order.
func HeaderRow() []string {
	return []string{
		"Product ID",
		"Type",
		"Parent ID",
		"Name",
		"SKU",
		"Attributes",
		"Regular Price",
		"Sale Price",
		"Stock",
		"Status",
	}
}

// ToRow flattens a product into one grid row.
func (p Product) ToRow() []string {
	row := make([]string, columnCount)
	row[ColumnID] = p.ID
	row[ColumnType] = p.Type
	row[ColumnParentID] = p.ParentID
	row[ColumnName] = p.Name
	row[ColumnSKU] = p.SKU
	row[ColumnAttributes] = p.Attributes
	row[ColumnRegularPrice] = p.RegularPrice
	row[ColumnSalePrice] = p.SalePrice
	row[ColumnStock] = p.StockQty
	row[ColumnStatus] = p.Status
	return row
}

// FromRow builds a product from a grid row. Short rows (trailing blank
// cells trimmed by the grid API) are padded with empty strings.
func FromRow(row []string) Product {
	cell := func(i colIdx) string {
		if int(i) < len(row) {
			return row[i]
		}
		return ""
	}
	return Product{
		ID:           cell(ColumnID),
		Type:         cell(ColumnType),
		ParentID:     cell(ColumnParentID),
		Name:         cell(ColumnName),
		SKU:          cell(ColumnSKU),
		Attributes:   cell(ColumnAttributes),
		RegularPrice: cell(ColumnRegularPrice),
		SalePrice:    cell(ColumnSalePrice),
		StockQty:     cell(ColumnStock),
		Status:       cell(ColumnStatus),
	}
}

// RowIDs extracts the identifier column from data rows, skipping rows
// with a blank id.
func RowIDs(rows [][]string) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > int(ColumnID) && row[ColumnID] != "" {
			ids = append(ids, row[ColumnID])
		}
	}
	return ids
}
