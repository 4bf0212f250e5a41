package domain

// ConfigKeyShippingPrice holds the flat shipping surcharge applied to rentals with delivery.
const ConfigKeyShippingPrice = "Prix livraison"

// ConfigElement is a key/value business setting stored by the backend.
type ConfigElement struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
