package admission

import (
	"strings"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/internal/models"
)

// IsAccepted reports whether the attachment passes the policy. A prefix matches
// either the start of the content type or its coarse type before the slash.
// Matching is case-sensitive.
func IsAccepted(part dto.AttachmentPart, policy models.AdmissionPolicy) bool {
	if part.Size > policy.MaxSizeBytes {
		return false
	}
	coarse, _, _ := strings.Cut(part.ContentType, "/")
	for _, prefix := range policy.AllowedTypePrefixes {
		if prefix == "" {
			continue
		}
		if strings.HasPrefix(part.ContentType, prefix) || coarse == prefix {
			return true
		}
	}
	return false
}

// Partition splits attachments into accepted and rejected, keeping their order.
func Partition(parts []dto.AttachmentPart, policy models.AdmissionPolicy) (accepted, rejected []dto.AttachmentPart) {
	for _, part := range parts {
		if IsAccepted(part, policy) {
			accepted = append(accepted, part)
		} else {
			rejected = append(rejected, part)
		}
	}
	return accepted, rejected
}
