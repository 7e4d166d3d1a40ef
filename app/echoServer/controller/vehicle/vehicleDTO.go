package vehicle

// SearchReq holds the inventory filters. Exactly one must be set.
type SearchReq struct {
	MaxPrice string `query:"max_price"`
	Model    string `query:"model"`
	Company  string `query:"company"`
	TopSpeed string `query:"top_speed"`
}

func (r SearchReq) filters() int {
	n := 0
	for _, s := range []string{r.MaxPrice, r.Model, r.Company, r.TopSpeed} {
		if s != "" {
			n++
		}
	}
	return n
}
