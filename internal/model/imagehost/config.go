package imagehost

// Config carries the imgbb upload API settings.
type Config struct {
	APIKey  string `json:"-"`
	BaseURL string `json:"baseUrl"`
	Timeout int    `json:"timeout"` // seconds
}
