package api

// Config carries the HTTP server settings.
type Config struct {
	Host        string
	Port        int
	ReleaseMode bool
}
