package dto

// SignatureRequest lists the upload parameters to sign. Empty values are not signed.
type SignatureRequest struct {
	Folder         string            `json:"folder,omitempty"          url:"folder,omitempty"`
	Tags           []string          `json:"tags,omitempty"            url:"tags,comma,omitempty"`
	ResourceType   string            `json:"resource_type,omitempty"   url:"resource_type,omitempty"`
	UploadPreset   string            `json:"upload_preset,omitempty"   url:"upload_preset,omitempty"`
	UseFilename    *bool             `json:"use_filename,omitempty"    url:"use_filename,omitempty"`
	UniqueFilename *bool             `json:"unique_filename,omitempty" url:"unique_filename,omitempty"`
	PublicID       string            `json:"public_id,omitempty"       url:"public_id,omitempty"`
	Transformation string            `json:"transformation,omitempty"  url:"transformation,omitempty"`
	Eager          string            `json:"eager,omitempty"           url:"eager,omitempty"`
	Context        map[string]string `json:"context,omitempty"         url:"-"`
	Metadata       map[string]string `json:"metadata,omitempty"        url:"-"`
}

// SignatureResponse is what the upload widget needs to perform a signed upload.
type SignatureResponse struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
}
