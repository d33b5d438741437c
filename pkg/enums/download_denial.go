package enums

// DownloadDenialReason names why a download attempt was refused.
type DownloadDenialReason string

const (
	DenialOrderNotFound    DownloadDenialReason = "order_not_found"
	DenialOrderNotComplete DownloadDenialReason = "order_not_complete"
	DenialOrderExpired     DownloadDenialReason = "order_expired"
	DenialLimitReached     DownloadDenialReason = "limit_reached"
)

// String implements fmt.Stringer.
func (d DownloadDenialReason) String() string {
	return string(d)
}
