package paging

// Meta describes one page of a result set. It is computed per response and
// never stored.
type Meta struct {
	Page            int  `json:"page"`
	Take            int  `json:"take"`
	ItemCount       int  `json:"itemCount"`
	TotalCount      int  `json:"totalCount"`
	PageCount       int  `json:"pageCount"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// NewMeta derives page metadata. itemCount is the number of records on this
// page, totalCount the number matching the filter across all pages.
func NewMeta(o Options, itemCount, totalCount int) Meta {
	pageCount := 0
	if o.Take > 0 {
		pageCount = (totalCount + o.Take - 1) / o.Take
	}
	return Meta{
		Page:            o.Page,
		Take:            o.Take,
		ItemCount:       itemCount,
		TotalCount:      totalCount,
		PageCount:       pageCount,
		HasPreviousPage: o.Page > 1,
		HasNextPage:     o.Page < pageCount,
	}
}
