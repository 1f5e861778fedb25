package prompts

import (
	"fmt"
	"strings"

	"github.com/spincoach-ai/engine/pkg/apperrors"
	"github.com/spincoach-ai/engine/pkg/models"
)

// Render fills a template with a transcript, producing the system and
// user prompt strings. Rendering is deterministic: the same template
// and transcript always produce the same prompts, which is what makes
// evaluation runs reproducible.
//
// The placeholder is validated at template-write time; it is re-checked
// here because scoring must never silently send a prompt with no
// transcript in it.
func Render(template *models.PromptTemplate, transcript string) (system, user string, err error) {
	if strings.TrimSpace(transcript) == "" {
		return "", "", fmt.Errorf("transcript cannot be empty")
	}
	if !template.HasPlaceholder() {
		return "", "", fmt.Errorf("template %q: %w", template.Name, apperrors.ErrMissingPlaceholder)
	}

	user = strings.ReplaceAll(template.UserTemplate, models.TranscriptPlaceholder, transcript)
	return template.SystemPrompt, user, nil
}
