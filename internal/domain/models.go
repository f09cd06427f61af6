package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gene is the root biological entity. Variants reference it and are removed with it.
type Gene struct {
	ID              int64  `json:"id"`
	Symbol          string `json:"symbol"`
	FullName        string `json:"fullName"`
	FunctionSummary string `json:"functionSummary"`
}

// String returns the gene symbol
func (g *Gene) String() string {
	return g.Symbol
}

// GeneticVariant is a specific genomic alteration tied to one Gene
type GeneticVariant struct {
	ID            uuid.UUID `json:"id"`
	GeneID        int64     `json:"geneId"`
	Chromosome    string    `json:"chromosome"`
	Position      int64     `json:"position"`
	ReferenceBase string    `json:"referenceBase"`
	AlternateBase string    `json:"alternateBase"`
	Impact        Impact    `json:"impact"`
	CreatedAt     time.Time `json:"-"`
}

// String renders the variant as chromosome:position ref>alt
func (v *GeneticVariant) String() string {
	return fmt.Sprintf("%s:%d %s>%s", v.Chromosome, v.Position, v.ReferenceBase, v.AlternateBase)
}

// PatientVariantReport links an external patient to a detected variant.
// PatientID is owned by the clinic service and is never re-validated on read.
type PatientVariantReport struct {
	ID              uuid.UUID       `json:"id"`
	PatientID       string          `json:"patientId"`
	VariantID       uuid.UUID       `json:"variantId"`
	DetectionDate   Date            `json:"detectionDate"`
	AlleleFrequency AlleleFrequency `json:"alleleFrequency"`
	CreatedAt       time.Time       `json:"-"`
}

// String returns a short human readable label
func (r *PatientVariantReport) String() string {
	return fmt.Sprintf("Report %s for patient %s", r.ID, r.PatientID)
}

// Date is a calendar date serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AlleleFrequency is a fraction in [0,1] stored with three decimal places.
// It is kept as an integer count of thousandths so values round-trip exactly.
type AlleleFrequency int64

// alleleFrequencyScale is 10^AlleleFrequencyScale
const alleleFrequencyScale = 1000

// NewAlleleFrequency converts thousandths into an AlleleFrequency
func NewAlleleFrequency(thousandths int64) AlleleFrequency {
	return AlleleFrequency(thousandths)
}

// Float64 returns the frequency as a float
func (a AlleleFrequency) Float64() float64 {
	return float64(a) / alleleFrequencyScale
}

// String renders the frequency with exactly three decimals
func (a AlleleFrequency) String() string {
	return fmt.Sprintf("%d.%03d", int64(a)/alleleFrequencyScale, int64(a)%alleleFrequencyScale)
}

// MarshalJSON renders the frequency as a JSON number with three decimals
func (a AlleleFrequency) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number with at most three decimals
func (a *AlleleFrequency) UnmarshalJSON(data []byte) error {
	parsed, err := ParseAlleleFrequency(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Allele frequency parse failures
var (
	ErrAlleleFrequencyRange     = errors.New("allele frequency must be between 0 and 1")
	ErrAlleleFrequencyPrecision = fmt.Errorf("ensure that there are no more than %d decimal places", AlleleFrequencyScale)
)

// ParseAlleleFrequency parses a decimal literal such as "0.25", "1" or "5e-1"
// exactly. Values outside [0,1] fail with ErrAlleleFrequencyRange and more
// than three fractional digits fail with ErrAlleleFrequencyPrecision; nothing
// is rounded.
func ParseAlleleFrequency(s string) (AlleleFrequency, error) {
	f, err := strconv.ParseFloat(s, 64)
	switch {
	case err != nil && !errors.Is(err, strconv.ErrRange):
		return 0, fmt.Errorf("invalid decimal %q", s)
	case f < 0 || f > 1:
		return 0, ErrAlleleFrequencyRange
	case err != nil:
		// Underflow: non-zero but below the smallest float
		if strings.HasPrefix(s, "-") {
			return 0, ErrAlleleFrequencyRange
		}
		return 0, ErrAlleleFrequencyPrecision
	}

	// big.Rat also accepts "a/b" fractions, which are not decimals
	if strings.ContainsRune(s, '/') {
		return 0, fmt.Errorf("invalid decimal %q", s)
	}
	rat, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("invalid decimal %q", s)
	}
	if rat.Sign() < 0 || rat.Cmp(big.NewRat(1, 1)) > 0 {
		return 0, ErrAlleleFrequencyRange
	}

	scaled := rat.Mul(rat, big.NewRat(alleleFrequencyScale, 1))
	if !scaled.IsInt() {
		return 0, ErrAlleleFrequencyPrecision
	}
	return AlleleFrequency(scaled.Num().Int64()), nil
}

// Validated inputs produced by the schema layer

// GeneInput is a validated gene payload
type GeneInput struct {
	Symbol          string
	FullName        string
	FunctionSummary string
}

// VariantInput is a validated variant payload
type VariantInput struct {
	GeneID        int64
	Chromosome    string
	Position      int64
	ReferenceBase string
	AlternateBase string
	Impact        Impact
}

// ReportInput is a validated report payload
type ReportInput struct {
	PatientID       string
	VariantID       uuid.UUID
	DetectionDate   Date
	AlleleFrequency AlleleFrequency
}

// CreateReportRequest carries a raw report payload and the caller's credential
type CreateReportRequest struct {
	Payload       map[string]any
	Authorization string
}
