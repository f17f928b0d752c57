package notify

import "html/template"

var orderConfirmationTmpl = template.Must(template.New("order").Funcs(template.FuncMap{
	"rupees": func(v int64) string { return "₹" + formatAmount(v) },
}).Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{if .ForAdmin}}New order received{{else}}Thank you for your order, {{.CustomerName}}!{{end}}</h2>
  <p>Order <strong>{{.OrderNumber}}</strong> placed on {{.PlacedAt}}.</p>
  {{if .ForAdmin}}<p>Customer: {{.CustomerName}} &lt;{{.CustomerEmail}}&gt;</p>{{end}}
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><th align="left">Item</th><th>Qty</th><th align="right">Price</th></tr>
    {{range .Order.Items}}
    <tr><td>{{.Title}}</td><td align="center">{{.Quantity}}</td><td align="right">{{rupees .Amount}}</td></tr>
    {{end}}
    <tr><td colspan="2">Subtotal</td><td align="right">{{rupees .Order.Subtotal}}</td></tr>
    <tr><td colspan="2">Delivery</td><td align="right">{{if eq .Order.DeliveryFee 0}}FREE{{else}}{{rupees .Order.DeliveryFee}}{{end}}</td></tr>
    <tr><td colspan="2"><strong>Total</strong></td><td align="right"><strong>{{rupees .Order.TotalAmount}}</strong></td></tr>
  </table>
  <p>Payment: {{if eq .Order.PaymentMethod "cod"}}Cash on delivery{{else}}Paid online ({{.Order.PaymentID}}){{end}}</p>
  <h3>Shipping to</h3>
  <p>
    {{.Order.Shipping.FullName}}<br>
    {{.Order.Shipping.StreetAddress}}<br>
    {{.Order.Shipping.City}}, {{.Order.Shipping.State}} {{.Order.Shipping.Pincode}}<br>
    {{.Order.Shipping.Country}}<br>
    Phone: {{.Order.PhoneNumber}}
  </p>
  {{with .Order.SpecialInstructions}}<p>Instructions: {{.}}</p>{{end}}
</body>
</html>`))

var otpTmpl = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Verify your email</h2>
  <p>Hi {{.Name}},</p>
  <p>Your verification code is <strong style="font-size: 20px; letter-spacing: 4px;">{{.OTP}}</strong>.</p>
  <p>The code expires in {{.ValidFor}}.</p>
</body>
</html>`))

type orderView struct {
	ForAdmin      bool
	OrderNumber   string
	PlacedAt      string
	CustomerName  string
	CustomerEmail string
	Order         orderData
}

// orderData mirrors domain.Order with Amount exposed on each line.
type orderData struct {
	Items               []lineView
	Subtotal            int64
	DeliveryFee         int64
	TotalAmount         int64
	PaymentMethod       string
	PaymentID           string
	Shipping            shippingView
	PhoneNumber         string
	SpecialInstructions string
}

type lineView struct {
	Title    string
	Quantity int
	Amount   int64
}

type shippingView struct {
	FullName      string
	StreetAddress string
	City          string
	State         string
	Pincode       string
	Country       string
}

type otpView struct {
	Name     string
	OTP      string
	ValidFor string
}
