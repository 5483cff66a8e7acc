package convert

import (
	"github.com/rs/zerolog"

	"github.com/ehr/interchange/internal/platform/cache"
	"github.com/ehr/interchange/internal/platform/detect"
	"github.com/ehr/interchange/internal/platform/sheet"
)

// Converter wraps ParseBytes with a result cache and debug logging.
type Converter struct {
	results *cache.Results[*Result]
	logger  zerolog.Logger
}

// NewConverter creates a converter. results may be nil to disable caching.
func NewConverter(results *cache.Results[*Result], logger zerolog.Logger) *Converter {
	return &Converter{results: results, logger: logger}
}

// Convert converts data, serving repeated uploads of the same content and
// format from the cache. Failures are not cached.
func (c *Converter) Convert(data []byte, known detect.Format) (*Result, error) {
	var key string
	if c.results != nil {
		key = cache.Key(string(known), data)
		if res, ok := c.results.Get(key); ok {
			c.logger.Debug().Str("format", string(res.Format)).Msg("conversion served from cache")
			return res, nil
		}
	}

	res, err := ParseBytes(data, known)
	if err != nil {
		c.logger.Debug().Err(err).Str("known_format", string(known)).Int("bytes", len(data)).Msg("conversion failed")
		return nil, err
	}

	c.logger.Debug().
		Str("format", string(res.Format)).
		Int("sheets", len(res.Sheets)).
		Int("rows", res.Rows()).
		Msg("converted")

	if c.results != nil {
		c.results.Set(key, res)
	}
	return res, nil
}

// Func adapts Convert to the batch conversion signature.
func (c *Converter) Func(content []byte, known detect.Format) ([]sheet.Sheet, detect.Format, error) {
	res, err := c.Convert(content, known)
	if err != nil {
		return nil, FormatOf(err), err
	}
	return res.Sheets, res.Format, nil
}
