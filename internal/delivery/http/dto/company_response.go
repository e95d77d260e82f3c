package dto

import (
	"time"

	"blue-collar-portal/internal/domain/company"

	"github.com/google/uuid"
)

type CompanyResponse struct {
	ID                 uuid.UUID  `json:"id"`
	OwnerUserID        uuid.UUID  `json:"owner_user_id"`
	Name               string     `json:"name"`
	VerificationStatus string     `json:"verification_status"`
	VerificationRemark *string    `json:"verification_remark"`
	IsDisabled         bool       `json:"is_disabled"`
	DisabledReason     *string    `json:"disabled_reason"`
	DisabledAt         *time.Time `json:"disabled_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func NewCompanyResponse(c company.Company) CompanyResponse {
	return CompanyResponse{
		ID:                 c.ID,
		OwnerUserID:        c.OwnerUserID,
		Name:               c.Name,
		VerificationStatus: string(c.VerificationStatus),
		VerificationRemark: c.VerificationRemark,
		IsDisabled:         c.IsDisabled,
		DisabledReason:     c.DisabledReason,
		DisabledAt:         c.DisabledAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
