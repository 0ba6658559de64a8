package domain

import "encoding/json"

// UploadFailure records one rejected item from a bulk upload, carrying the raw
// payload back to the caller together with the reason it was rejected.
type UploadFailure struct {
	Item   json.RawMessage `json:"item"`
	Reason string          `json:"reason"`
}

// UploadResult summarizes a bulk upload. TotalCount is always
// CreatedCount plus FailedCount.
type UploadResult struct {
	TotalCount   int             `json:"totalCount"`
	CreatedCount int             `json:"createdCount"`
	FailedCount  int             `json:"failedCount"`
	Failures     []UploadFailure `json:"failures"`
}
