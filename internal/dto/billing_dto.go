package dto

type CheckoutResponse struct {
	URL string `json:"url"`
}
