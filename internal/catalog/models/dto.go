package models

// YachtModelForm carries create/update payloads.
type YachtModelForm struct {
	Code             string  `json:"code" validate:"required"`
	Name             string  `json:"name" validate:"required"`
	BasePrice        float64 `json:"base_price" validate:"gte=0"`
	BaseDeliveryDays int     `json:"base_delivery_days" validate:"gte=0"`
	IsActive         bool    `json:"is_active"`
}
