package model

// Table is the display form of one vendor's matches: every cell a string.
type Table struct {
	Vendor          Vendor   `json:"vendor"`
	Title           string   `json:"title"`
	Status          Status   `json:"status"`
	Message         string   `json:"message,omitempty"`
	MappedThickness string   `json:"mapped_thickness,omitempty"`
	Columns         []string `json:"columns"`
	Rows            []Row    `json:"rows"`
}

type Row struct {
	ProductName string   `json:"product_name"`
	Cells       []string `json:"cells"`
	Highlight   bool     `json:"highlight,omitempty"`
}
