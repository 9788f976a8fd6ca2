package util

import (
	"crypto/rand"
	"math/big"
)

const couponAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CouponCodeLength is the length of a display coupon code.
const CouponCodeLength = 8

// GenerateCouponCode returns CouponCodeLength uppercase base-36 characters.
// The code is for display only and is never redeemed.
func GenerateCouponCode() (string, error) {
	return randomString(CouponCodeLength, couponAlphabet)
}

func randomString(n int, alphabet string) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphabet[idx.Int64()]
	}
	return string(buf), nil
}
