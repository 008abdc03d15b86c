package imagehost

import "time"

// Result describes a stored image as reported by the hosting service.
type Result struct {
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ViewerURL string    `json:"viewerUrl,omitempty"`
	DeleteURL string    `json:"deleteUrl,omitempty"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
