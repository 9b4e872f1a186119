package books

// Status は books.status の取りうる値。自由文字列では持たない。
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

func (s Status) Valid() bool {
	return s == StatusAvailable || s == StatusUnavailable
}

// StatusForQuantity derives the stored status from the shelf quantity.
func StatusForQuantity(q int) Status {
	if q > 0 {
		return StatusAvailable
	}
	return StatusUnavailable
}
