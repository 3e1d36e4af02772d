// README: Common money value object used across modules (amounts in paisa).
package types

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
