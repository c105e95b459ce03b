package enrich

// Result is the outcome of one external lookup. Each field is nil when the
// lookup found no value for it; neither case is an error.
type Result struct {
	ImageURL *string `json:"image_url"`
	Team     *string `json:"team"`
}

// Empty reports whether the lookup found nothing
func (r Result) Empty() bool {
	return r.ImageURL == nil && r.Team == nil
}

// Image returns the image URL or ""
func (r Result) Image() string {
	if r.ImageURL == nil {
		return ""
	}
	return *r.ImageURL
}

// TeamName returns the team or ""
func (r Result) TeamName() string {
	if r.Team == nil {
		return ""
	}
	return *r.Team
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
