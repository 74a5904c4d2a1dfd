package translatesvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/takanag/nenga/core"
)

const (
	deepLHost     = "https://api.deepl.com"
	deepLFreeHost = "https://api-free.deepl.com"
)

// deepLTranslator talks to the DeepL v2 API. Keys ending in ":fx" belong
// to the free tier, which lives on its own host.
type deepLTranslator struct {
	key  string
	host string
}

var _ core.Translator = (*deepLTranslator)(nil)

func NewDeepLTranslator(key string) *deepLTranslator {
	host := deepLHost
	if strings.HasSuffix(key, ":fx") {
		host = deepLFreeHost
	}
	return &deepLTranslator{key: key, host: host}
}

func (t *deepLTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	form := make(url.Values)
	form.Set("text", text)
	form.Set("target_lang", targetLang)

	req := rest.Request{
		Method:  rest.Post,
		BaseURL: t.host + "/v2/translate",
		Headers: map[string]string{
			"Authorization": "DeepL-Auth-Key " + t.key,
			"Content-Type":  "application/x-www-form-urlencoded",
		},
		Body: []byte(form.Encode()),
	}

	res, err := rest.SendWithContext(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "calling DeepL")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return "", errors.Errorf("DeepL status %d: %s", res.StatusCode, res.Body)
	}

	var body struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err = json.Unmarshal([]byte(res.Body), &body); err != nil {
		return "", errors.Wrap(err, "decoding DeepL response")
	}
	if len(body.Translations) == 0 {
		return "", errors.New("DeepL returned no translations")
	}
	return body.Translations[0].Text, nil
}
