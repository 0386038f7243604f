package cloud

import (
	"context"
	"errors"
	"fmt"
	"html"

	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"
)

// Translator calls the Cloud Translation v2 API with an API key.
type Translator struct {
	svc *translate.Service
	err error
}

// NewTranslator creates a Translator. Construction errors, including a
// missing key, are reported by Translate so callers can treat them as a
// failed check.
func NewTranslator(ctx context.Context, apiKey string, opts ...option.ClientOption) *Translator {
	if apiKey == "" {
		return &Translator{err: ErrMissingAPIKey}
	}
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := translate.NewService(ctx, opts...)
	if err != nil {
		return &Translator{err: fmt.Errorf("create translate service: %w", err)}
	}
	return &Translator{svc: svc}
}

// Translate translates text into target (an ISO-639-1 code).
func (t *Translator) Translate(ctx context.Context, text, target string) (string, error) {
	if t.err != nil {
		return "", t.err
	}
	resp, err := t.svc.Translations.List([]string{text}, target).Format("text").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	if len(resp.Translations) == 0 || resp.Translations[0] == nil {
		return "", errors.New("translate: empty response")
	}
	return html.UnescapeString(resp.Translations[0].TranslatedText), nil
}
