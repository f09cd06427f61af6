package schema

import (
	"strings"

	"github.com/google/uuid"

	"github.com/variant-reports-service/internal/domain"
)

type geneForm struct {
	Symbol          string `json:"symbol" validate:"required,max=20"`
	FullName        string `json:"fullName" validate:"required,max=255"`
	FunctionSummary string `json:"functionSummary" validate:"required"`
}

type variantForm struct {
	GeneID        int64  `json:"geneId"`
	Chromosome    string `json:"chromosome" validate:"required,max=10"`
	Position      int64  `json:"position" validate:"gte=0,lte=2147483647"`
	ReferenceBase string `json:"referenceBase" validate:"required,max=5"`
	AlternateBase string `json:"alternateBase" validate:"required,max=5"`
	Impact        string `json:"impact" validate:"required,max=50,impact"`
}

type reportForm struct {
	PatientID       string    `json:"patientId" validate:"required,max=255"`
	VariantID       uuid.UUID `json:"variantId" validate:"required"`
	DetectionDate   string    `json:"detectionDate" validate:"required"`
	AlleleFrequency float64   `json:"alleleFrequency" validate:"gte=0,lte=1"`
}

// Gene validates a gene payload
func (v *Validator) Gene(p Payload) (*domain.GeneInput, error) {
	r := newReader(p)
	form := geneForm{
		Symbol:          strings.TrimSpace(r.string("symbol")),
		FullName:        strings.TrimSpace(r.string("fullName")),
		FunctionSummary: strings.TrimSpace(r.string("functionSummary")),
	}

	v.check(&form, r.errs)
	if err := r.errs.OrNil(); err != nil {
		return nil, err
	}

	return &domain.GeneInput{
		Symbol:          form.Symbol,
		FullName:        form.FullName,
		FunctionSummary: form.FunctionSummary,
	}, nil
}

// Variant validates a variant payload. It does not check that the gene
// exists, so any integer geneId passes and resolves later.
func (v *Validator) Variant(p Payload) (*domain.VariantInput, error) {
	r := newReader(p)
	geneID, _ := r.integer("geneId")
	position, _ := r.integer("position")
	form := variantForm{
		GeneID:        geneID,
		Chromosome:    strings.TrimSpace(r.string("chromosome")),
		Position:      position,
		ReferenceBase: strings.TrimSpace(r.string("referenceBase")),
		AlternateBase: strings.TrimSpace(r.string("alternateBase")),
		Impact:        strings.TrimSpace(r.string("impact")),
	}

	v.check(&form, r.errs)
	if err := r.errs.OrNil(); err != nil {
		return nil, err
	}

	impact, _ := domain.ParseImpact(form.Impact)
	return &domain.VariantInput{
		GeneID:        form.GeneID,
		Chromosome:    form.Chromosome,
		Position:      form.Position,
		ReferenceBase: strings.ToUpper(form.ReferenceBase),
		AlternateBase: strings.ToUpper(form.AlternateBase),
		Impact:        impact,
	}, nil
}

// Report validates a report payload. It neither contacts the clinic nor
// checks that the variant exists. patientId belongs to the clinic service and
// is kept verbatim.
func (v *Validator) Report(p Payload) (*domain.ReportInput, error) {
	r := newReader(p)
	freq, _ := r.alleleFrequency("alleleFrequency")
	date := r.date("detectionDate")
	form := reportForm{
		PatientID:       r.string("patientId"),
		VariantID:       r.uuid("variantId"),
		AlleleFrequency: freq.Float64(),
	}
	if !date.IsZero() {
		form.DetectionDate = date.String()
	}

	v.check(&form, r.errs)
	if err := r.errs.OrNil(); err != nil {
		return nil, err
	}

	return &domain.ReportInput{
		PatientID:       form.PatientID,
		VariantID:       form.VariantID,
		DetectionDate:   date,
		AlleleFrequency: freq,
	}, nil
}
