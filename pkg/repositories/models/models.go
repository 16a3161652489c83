package models

// Score is the best known result of a ship.
type Score struct {
	ClientID     string `json:"client_id"`
	Name         string `json:"name"`
	ShipImageURL string `json:"ship_image_url,omitempty"`
	Kills        int    `json:"kills"`
	// UpdatedAt is in epoch milliseconds
	UpdatedAt int64 `json:"updated_at"`
}
