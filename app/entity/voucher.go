package entity

type Voucher struct {
	ID uint64

	Code string
}
