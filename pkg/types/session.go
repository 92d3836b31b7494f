package types

import "github.com/charlie0129/cellentry/pkg/cell"

// RegisterRequest is the body of a registration submission.
type RegisterRequest struct {
	Labels []string `json:"labels"`
	Count  int      `json:"count"`
}

// SessionInfo describes a session and its cells in slot order.
type SessionInfo struct {
	ID     string       `json:"id"`
	Phase  string       `json:"phase"`
	Labels []string     `json:"labels,omitempty"`
	Cells  []*cell.Spec `json:"cells"`
}
