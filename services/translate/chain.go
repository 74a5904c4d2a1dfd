package translatesvc

import (
	"context"
	"fmt"
	"strings"

	"github.com/takanag/nenga/core"
)

// chain tries each configured translator in turn. With no translator
// configured it echoes the original text; when every configured one
// fails the last error is returned.
type chain struct {
	translators []core.Translator
	logger      core.Logger
}

var _ core.Translator = (*chain)(nil)

// NewChain wires the translation fallback order from the configured API
// keys: DeepL first, then OpenAI. With no keys at all every call echoes.
func NewChain(logger core.Logger, conf *core.Config) core.Translator {
	c := &chain{logger: logger}
	if key := conf.Translate.DeepLKey; key != "" {
		c.translators = append(c.translators, NewDeepLTranslator(key))
	}
	if key := conf.Translate.OpenAIKey; key != "" {
		c.translators = append(c.translators, NewOpenAITranslator(key))
	}
	return c
}

func (c *chain) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	// no translator configured; hand the text back untouched
	if len(c.translators) == 0 {
		return text, nil
	}

	var lastErr error
	for _, t := range c.translators {
		translated, err := t.Translate(ctx, text, targetLang)
		if err != nil {
			c.logger.Warn(fmt.Sprintf("translator failed, falling back: %v", err), err)
			lastErr = err
			continue
		}
		return translated, nil
	}
	return "", lastErr
}
