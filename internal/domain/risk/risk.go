package risk

import (
	"context"
	"errors"
)

type Content struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Industry    string `json:"industry"`
	SalaryMin   *int   `json:"salary_min,omitempty"`
	SalaryMax   *int   `json:"salary_max,omitempty"`
}

type Assessment struct {
	Score       int      `json:"risk_score"`
	AutoApprove bool     `json:"auto_approve"`
	Flags       []string `json:"flags"`
	Explanation string   `json:"explanation"`
}

var ErrInvalidAssessment = errors.New("invalid risk assessment")

// Assessor scores listing content. Callers bound the call with a deadline.
type Assessor interface {
	Assess(ctx context.Context, c Content) (Assessment, error)
}

// Normalize clamps the score into 0..100 and drops empty flags.
func (a Assessment) Normalize() Assessment {
	if a.Score < 0 {
		a.Score = 0
	}
	if a.Score > 100 {
		a.Score = 100
	}
	flags := make([]string, 0, len(a.Flags))
	for _, f := range a.Flags {
		if f != "" {
			flags = append(flags, f)
		}
	}
	a.Flags = flags
	return a
}
