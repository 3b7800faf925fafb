package dto

import "time"

// ExportRequest triggers a bulk export of the selected receipts through the
// external export webhook.
type ExportRequest struct {
	From   *time.Time `json:"from"`
	To     *time.Time `json:"to"`
	Format string     `json:"format" binding:"omitempty,oneof=sheet pdf"`
}

// ExportResponse carries whatever the export webhook returned: a link to a
// generated sheet or file, or inline PDF bytes when the endpoint answered
// with a PDF content type.
type ExportResponse struct {
	SheetURL    string `json:"sheetUrl,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	PDF         []byte `json:"pdf,omitempty"`
}

// RelanceRequest asks the notification webhook to send a reminder to a
// client about missing documents.
type RelanceRequest struct {
	Message string `json:"message"`
}
