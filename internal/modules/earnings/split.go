// README: Delivery-fee split between driver and platform; integer-exact.
package earnings

import "feastly/internal/types"

// SplitFee divides a delivery fee between driver and platform. The platform
// share is the remainder, so the two always sum to the fee exactly; integer
// truncation never leaks a minor unit.
func SplitFee(fee types.Money, shareNumerator int64) (driver, platform types.Money, err error) {
	if fee.Amount < 0 {
		return types.Money{}, types.Money{}, ErrValidation
	}
	if shareNumerator < 0 || shareNumerator > shareDenominator {
		return types.Money{}, types.Money{}, ErrValidation
	}
	d := fee.Amount * shareNumerator / shareDenominator
	driver = types.Money{Amount: d, Currency: fee.Currency}
	platform = types.Money{Amount: fee.Amount - d, Currency: fee.Currency}
	return driver, platform, nil
}
