// README: Common money value object used across modules.
package types

// Money is an amount in minor units. Integer so fee splits can be exact.
type Money struct {
	Amount   int64
	Currency string
}
