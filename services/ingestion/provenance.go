package ingestion

import (
	"strings"
	"time"

	"github.com/customeros/docingest/dto"
	"github.com/customeros/docingest/internal/utils"
)

const maxSnippetLength = 280

// Provenance describes where a document came from, for display next to it.
func Provenance(message *dto.InboundMessage) string {
	if message == nil {
		return ""
	}

	lines := []string{
		"From: " + message.Sender,
		"Subject: " + message.Subject,
		"Received: " + message.ReceivedAt.UTC().Format(time.RFC1123),
	}
	if snippet := utils.FirstLine(message.BodyText); snippet != "" {
		lines = append(lines, utils.TruncateString(snippet, maxSnippetLength))
	}
	return strings.Join(lines, "\n")
}
