package returns

import (
	"strings"

	"github.com/channelbridge/backend/internal/domain/shared"
)

// ReturnReason labels why goods came back
type ReturnReason struct {
	shared.BaseEntity
	Name   string `gorm:"size:255;uniqueIndex;not null"`
	Active bool   `gorm:"not null;default:true"`
}

// NewReturnReason creates a return reason
func NewReturnReason(name string) (*ReturnReason, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Return reason name cannot be empty")
	}
	return &ReturnReason{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Active:     true,
	}, nil
}
