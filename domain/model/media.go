package model

// MediaKind is the kind of an uploaded media asset.
type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// MediaRef references an asset produced by the media-upload service. It is stored as-is.
type MediaRef struct {
	URL             string    `json:"url"`
	Kind            MediaKind `json:"kind"`
	ByteSize        int64     `json:"byte_size"`
	Width           int       `json:"width"`
	Height          int       `json:"height"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	PublicID        string    `json:"public_id,omitempty"`
	Format          string    `json:"format,omitempty"`
}
