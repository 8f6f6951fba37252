package docstore

import (
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"chatdash/pkg/errors"
)

var recordValidator = validator.New()

// Decode copies doc.Data into out using the `firestore` struct tags and checks
// the `validate` tags. Missing required fields yield a MALFORMED_RECORD error.
func Decode(collection string, doc Document, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "firestore",
		Result:  out,
	})
	if err != nil {
		return errors.Internal("Failed to build record decoder", err)
	}

	if err := decoder.Decode(doc.Data); err != nil {
		return errors.MalformedRecord(collection, err)
	}

	if err := recordValidator.Struct(out); err != nil {
		return errors.MalformedRecord(collection, err)
	}

	return nil
}
