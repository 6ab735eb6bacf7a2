package models

// AcquireRequest is the payload for POST /api/v1/acquire.
type AcquireRequest struct {
	// URL is the product page to acquire. Required, absolute.
	URL string `json:"url" binding:"required,url"`
}

// AcquireResponse is the response for POST /api/v1/acquire.
// Business-level failure is a structured body, never an HTTP error.
type AcquireResponse struct {
	OK          bool              `json:"ok"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Price       string            `json:"price,omitempty"`
	Images      []string          `json:"images"`
	Meta        *StageMeta        `json:"meta,omitempty"`
	Stage       string            `json:"stage,omitempty"`
	Steps       map[string]string `json:"steps,omitempty"`
	Error       *ErrorDetail      `json:"error,omitempty"`
}

// FromOutcome converts an orchestrator StageOutcome into the API shape.
func FromOutcome(o *StageOutcome) AcquireResponse {
	resp := AcquireResponse{
		OK:     o.OK,
		Stage:  o.Stage,
		Steps:  o.Steps,
		Images: []string{},
	}
	if o.Content != nil {
		resp.Title = o.Content.Title
		resp.Description = o.Content.Description
		resp.Price = o.Content.Price
		if len(o.Content.Images) > 0 {
			resp.Images = o.Content.Images
		}
	}
	meta := o.Meta
	resp.Meta = &meta
	if !o.OK && o.Error != "" {
		code := ErrCodeBlocked
		resp.Error = &ErrorDetail{Code: code, Message: o.Error}
	}
	return resp
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	Version         string `json:"version"`
	ProxyPoolSize   int    `json:"proxy_pool_size"`
	UnlockerEnabled bool   `json:"unlocker_enabled"`
}
