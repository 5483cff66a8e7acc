package x12

import "github.com/ehr/interchange/internal/platform/sheet"

// Parse frames content and decodes it according to the first transaction
// set code. 835 and 837 get their dedicated decoders; everything else goes
// through the generic dispatch.
func Parse(content string) ([]sheet.Sheet, error) {
	env, err := Frame(content)
	if err != nil {
		return nil, err
	}

	switch env.TransactionType() {
	case "835":
		return RemittanceSheets(DecodeRemittances(env)), nil
	case "837":
		return ClaimSheets(DecodeClaims(env)), nil
	}
	return GenericSheets(env), nil
}
