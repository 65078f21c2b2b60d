package domain

type Destination struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Location    Location `json:"location"`
	Images      []Image  `json:"images"`
	Price       float64  `json:"price"`
	Rating      float64  `json:"rating"`
	Description string   `json:"description"`
}

type Location struct {
	City        string     `json:"city"`
	Country     string     `json:"country"`
	Coordinates [2]float64 `json:"coordinates"`
}

type Image struct {
	URL string `json:"url"`
}
