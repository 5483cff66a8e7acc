package ncpdp

import "github.com/ehr/interchange/internal/platform/sheet"

// Parse decodes NCPDP content into up to three sheets: transaction headers,
// a wide claims table with one column per field code, and a raw
// code/name/value listing.
func Parse(content string) ([]sheet.Sheet, error) {
	txns, err := Decode(content)
	if err != nil {
		return nil, err
	}
	return Sheets(txns), nil
}

// Sheets renders decoded transactions.
func Sheets(txns []Transaction) []sheet.Sheet {
	headers := sheet.New("NCPDP Transactions", []string{
		"BIN Number", "Version", "Transaction Code", "Transaction Name",
		"Processor Control Number", "Service Provider ID",
		"Date of Service", "Transaction Count",
	})

	var claims []*Claim
	for _, t := range txns {
		if h := t.Header; !h.Empty() {
			name := TransactionCodes[h.TransactionCode]
			if name == "" {
				name = h.TransactionCode
			}
			headers.Append(h.BIN, h.Version, h.TransactionCode, name,
				h.ProcessorControlNumber, h.ServiceProviderID,
				formatDate(h.DateOfService), h.TransactionCount)
		}
		claims = append(claims, t.Claims...)
	}

	out := sheet.Collect(headers)
	if len(claims) == 0 {
		return out
	}
	return append(out, claimsSheet(claims), rawSheet(claims))
}

// claimsSheet lays claims out wide. Columns follow first-seen code order
// and take the field name in force where the code was first seen.
func claimsSheet(claims []*Claim) sheet.Sheet {
	var (
		codes    []string
		names    []string
		currency []int
		seen     = make(map[string]bool)
	)
	for _, c := range claims {
		for _, f := range c.Fields {
			if seen[f.Code] {
				continue
			}
			seen[f.Code] = true
			codes = append(codes, f.Code)
			names = append(names, f.Name())
			if currencyFields[f.Code] && segmentFieldNames[f.Segment][f.Code] == "" {
				currency = append(currency, len(codes))
			}
		}
	}

	s := sheet.New("NCPDP Claims", names, currency...)
	for _, c := range claims {
		row := make([]any, len(codes))
		for i, code := range codes {
			row[i] = c.Get(code)
		}
		s.Append(row...)
	}
	return *s
}

func rawSheet(claims []*Claim) sheet.Sheet {
	s := sheet.New("NCPDP Raw Fields", []string{"Field Code", "Field Name", "Value"})
	for i, c := range claims {
		for _, f := range c.Fields {
			s.Append(f.Code, f.Name(), f.Value)
		}
		if i < len(claims)-1 {
			s.Append("---", "--- New Claim ---", "---")
		}
	}
	return *s
}

// formatDate renders a CCYYMMDD date as MM/DD/YYYY. Other values are
// returned unchanged.
func formatDate(s string) string {
	if len(s) != 8 || !isDigits(s) {
		return s
	}
	return s[4:6] + "/" + s[6:8] + "/" + s[:4]
}
