package cdn

// Server is one CDN host entry from the Ribbit-discovered bootstrap list.
type Server struct {
	Host          string
	SupportsHTTPS bool
	Priority      int
	IsFallback    bool
	// Strict disables failover to other servers for requests that
	// originate on this one: a retryable failure here is returned as-is
	// rather than tried elsewhere.
	Strict bool
}

func (s Server) scheme() string {
	if s.SupportsHTTPS {
		return "https"
	}
	return "http"
}
