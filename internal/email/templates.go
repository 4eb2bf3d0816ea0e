package email

import (
	"fmt"
	"strings"

	"github.com/example/storefront/internal/domain/order"
)

// BuildOrderConfirmationBody builds the HTML body for the order confirmation
// email. Amounts are EUR, formatted to two decimals.
func BuildOrderConfirmationBody(o *order.Order) string {
	var itemsHTML strings.Builder
	for _, item := range o.Items {
		name := item.Name
		if name == "" {
			name = item.ID
		}
		itemsHTML.WriteString(fmt.Sprintf(
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s€</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s€</td>
			</tr>`,
			name,
			item.Quantity,
			formatAmount(item.Price),
			formatAmount(item.Price*float64(item.Quantity)),
		))
	}

	delivery := "Atsiėmimas parduotuvėje"
	if o.Shipping.Method == order.DeliveryShipping {
		delivery = fmt.Sprintf("Pristatymas: %s, %s %s", o.Shipping.Address, o.Shipping.City, o.Shipping.PostalCode)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #c9a227 0%%, #e3c76f 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Ačiū už jūsų užsakymą</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Jūsų užsakymas gautas ir apdorojamas.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Užsakymo numeris</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<h2 style="font-size: 18px; border-bottom: 2px solid #c9a227; padding-bottom: 10px;">Užsakymo turinys</h2>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Prekė</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Kiekis</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Kaina</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Suma</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<p style="font-size: 14px; color: #666;">%s</p>

		<div style="text-align: right; padding: 20px; background: #f8f9fa; border-radius: 5px;">
			<span style="font-size: 14px; color: #666;">Iš viso</span>
			<span style="font-size: 24px; font-weight: bold; color: #c9a227; margin-left: 10px;">%s€</span>
		</div>

		<hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

		<p style="font-size: 12px; color: #999; margin-bottom: 0;">
			Šis laiškas išsiųstas automatiškai. Jei turite klausimų, susisiekite su mumis.
		</p>
	</div>
</body>
</html>`, o.Reference, itemsHTML.String(), delivery, formatAmount(o.Total))
}

// formatAmount renders an EUR amount to two decimal places.
func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}
