package ratefeed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one treasury rate as published.
type Record struct {
	RecordDate   string          `json:"record_date"`
	SecurityType string          `json:"security_type"`
	SecurityDesc string          `json:"security_desc"`
	RateDate     string          `json:"rate_date"`
	Rate         decimal.Decimal `json:"rate"`
	CUSIP        string          `json:"cusip"`
}

type envelope struct {
	Data []Record `json:"data"`
}

// Transform strips everything that may differ between two fetches of the
// same data: headers are dropped, meta and links are removed, records are
// sorted, and the body is re-encoded canonically. Non-2xx responses keep
// their body untouched so the status can still be reported.
func Transform(resp Response) (Response, error) {
	out := Response{Status: resp.Status}
	if !successful(resp.Status) {
		out.Body = append([]byte(nil), resp.Body...)
		return out, nil
	}

	records, err := decode(resp.Body)
	if err != nil {
		return Response{}, err
	}
	sortRecords(records)

	body, err := encode(records)
	if err != nil {
		return Response{}, err
	}
	out.Body = body
	return out, nil
}

// Parse validates a transformed response and returns its records. Either
// every record is valid or none are returned.
func Parse(resp Response) ([]Record, error) {
	if !successful(resp.Status) {
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.Status)
	}
	records, err := decode(resp.Body)
	if err != nil {
		return nil, err
	}
	for i, r := range records {
		if err := validate(r); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformed, i, err)
		}
	}
	return records, nil
}

func successful(status int) bool {
	return status >= 200 && status < 300
}

func decode(body []byte) ([]Record, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	var env envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: missing data array", ErrMalformed)
	}
	for i := range env.Data {
		env.Data[i].CUSIP = strings.ToUpper(strings.TrimSpace(env.Data[i].CUSIP))
	}
	return env.Data, nil
}

func encode(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(envelope{Data: records}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.CUSIP != b.CUSIP {
			return a.CUSIP < b.CUSIP
		}
		if a.RecordDate != b.RecordDate {
			return a.RecordDate < b.RecordDate
		}
		if a.RateDate != b.RateDate {
			return a.RateDate < b.RateDate
		}
		if a.SecurityDesc != b.SecurityDesc {
			return a.SecurityDesc < b.SecurityDesc
		}
		return a.Rate.LessThan(b.Rate)
	})
}

func validate(r Record) error {
	if r.CUSIP == "" {
		return fmt.Errorf("missing cusip")
	}
	if r.RecordDate == "" {
		return fmt.Errorf("missing record_date")
	}
	if r.Rate.IsNegative() {
		return fmt.Errorf("negative rate %s", r.Rate)
	}
	return nil
}
