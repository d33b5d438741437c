package downloads

import (
	"github.com/google/uuid"

	"github.com/fitlabhq/fitstore-backend/pkg/enums"
)

// Decision is the outcome of an entitlement check.
type Decision struct {
	Allowed bool
	Reason  enums.DownloadDenialReason
}

// FileStream is the fully buffered download payload handed to the HTTP layer.
type FileStream struct {
	Data        []byte
	FileName    string
	ContentType string
	Size        int64
}

// DownloadRequest carries the request metadata used for auditing.
type DownloadRequest struct {
	OrderID   uuid.UUID
	IP        string
	UserAgent string
}

// DownloadCompletedEvent is the outbox payload for a served download.
type DownloadCompletedEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	ProductID     uuid.UUID `json:"product_id"`
	DownloadCount int       `json:"download_count"`
	MaxDownloads  int       `json:"max_downloads"`
}
