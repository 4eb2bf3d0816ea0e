package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/storefront/internal/domain/order"
)

func TestBuildOrderConfirmationBody(t *testing.T) {
	o := &order.Order{
		Reference: "ORD-1718000000000",
		Email:     "jurgita@example.lt",
		Items: []order.Item{
			{ID: "A", Name: "Auksinė apyrankė", Price: 10.00, Quantity: 2},
		},
		Total: 20.00,
		Shipping: order.ShippingDetails{
			Method:     order.DeliveryShipping,
			Address:    "Gedimino pr. 1",
			City:       "Vilnius",
			PostalCode: "01103",
		},
	}

	body := BuildOrderConfirmationBody(o)

	assert.Contains(t, body, "ORD-1718000000000")
	assert.Contains(t, body, "Auksinė apyrankė")
	assert.Contains(t, body, "10.00€")
	assert.Contains(t, body, "20.00€")
	assert.Contains(t, body, "Pristatymas: Gedimino pr. 1, Vilnius 01103")
}

func TestBuildOrderConfirmationBody_Pickup(t *testing.T) {
	o := &order.Order{
		Reference: "ORD-1",
		Items:     []order.Item{{ID: "A", Price: 5.00, Quantity: 1}},
		Total:     5.00,
		Shipping:  order.ShippingDetails{Method: order.DeliveryPickup},
	}

	body := BuildOrderConfirmationBody(o)

	assert.Contains(t, body, "Atsiėmimas parduotuvėje")
	// Unnamed items fall back to their id.
	assert.Contains(t, body, ">A</td>")
}
