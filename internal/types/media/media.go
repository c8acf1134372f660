package media

// AssetKind selects the storage folder for an upload.
type AssetKind string

const (
	KindDefault AssetKind = ""
	KindProfile AssetKind = "profile"
	KindNGO     AssetKind = "ngo"
)

// TicketRequest mirrors the query string of GET /get-presigned-url.
type TicketRequest struct {
	FileName string    `json:"fileName" validate:"required"`
	FileType string    `json:"fileType" validate:"required"`
	UserID   string    `json:"userId" validate:"required"`
	ItemID   string    `json:"itemId" validate:"required"`
	Type     AssetKind `json:"type"`
}

// UploadTicket authorizes a single PUT. It is never persisted.
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	// ContentType is the type signed into UploadURL; the PUT must send it.
	ContentType string `json:"contentType,omitempty"`
}
