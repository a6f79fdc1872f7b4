package anaf

import "testing"

// SetReadLimits reduce los topes de lectura durante un test.
func SetReadLimits(t testing.TB, response, receiptEntry int64) {
	t.Helper()
	prevResp, prevEntry := maxResponseBytes, maxReceiptEntry
	maxResponseBytes, maxReceiptEntry = response, receiptEntry
	t.Cleanup(func() { maxResponseBytes, maxReceiptEntry = prevResp, prevEntry })
}
