package domain

import (
	"crypto/subtle"
	"slices"
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	OTPLength = 6
	OTPTTL    = 3 * time.Minute
)

// CartItem references a product in a user's cart.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// User models a storefront customer.
type User struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	Verified         bool       `json:"is_verified"`
	OTP              string     `json:"-"`
	OTPExpiresAt     time.Time  `json:"-"`
	Cart             []CartItem `json:"cart"`
	Wishlist         []string   `json:"wishlist"`
	Orders           []string   `json:"orders"`
	RefreshTokenHash string     `json:"-"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// OwnsOrder reports whether orderID is in the user's order list.
func (u User) OwnsOrder(orderID string) bool {
	return slices.Contains(u.Orders, orderID)
}

// CartQuantity returns the quantity of productID in the cart.
func (u User) CartQuantity(productID string) (int, bool) {
	for _, it := range u.Cart {
		if it.ProductID == productID {
			return it.Quantity, true
		}
	}
	return 0, false
}

// CheckOTP validates a submitted one-time code against the pending one.
func (u User) CheckOTP(otp string, now time.Time) error {
	if u.Verified {
		return NewError(ErrValidation, "user already verified")
	}
	if u.OTP == "" || subtle.ConstantTimeCompare([]byte(u.OTP), []byte(otp)) != 1 {
		return ErrInvalidOTP
	}
	if now.After(u.OTPExpiresAt) {
		return ErrOTPExpired
	}
	return nil
}
