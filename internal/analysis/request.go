package analysis

import "github.com/blopez6567/Clashsense/internal/model"

// DefaultMaxClashes caps how many clashes are sent per request.
const DefaultMaxClashes = 5

// ClashSummary is the projection of a clash sent to the model.
type ClashSummary struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Request is the body of one analysis call.
type Request struct {
	ProjectName  string         `json:"projectName"`
	Clashes      []ClashSummary `json:"clashes"`
	TotalClashes int            `json:"totalClashes"`
}

// Result is the model's analysis of a Request.
type Result struct {
	Analysis        string `json:"analysis"`
	AnalyzedClashes int    `json:"analyzedClashes"`
	TotalClashes    int    `json:"totalClashes"`
}

// BuildRequest projects the first maxClashes records. A non-positive
// maxClashes uses DefaultMaxClashes.
func BuildRequest(projectName string, records []model.ClashRecord, maxClashes int) Request {
	if maxClashes <= 0 {
		maxClashes = DefaultMaxClashes
	}
	n := min(len(records), maxClashes)

	req := Request{
		ProjectName:  projectName,
		Clashes:      make([]ClashSummary, 0, n),
		TotalClashes: len(records),
	}
	for _, r := range records[:n] {
		req.Clashes = append(req.Clashes, ClashSummary{
			ID:          r.ID,
			Type:        r.Type,
			Status:      string(r.Status),
			Description: r.Description,
			Location:    r.Location,
		})
	}
	return req
}
