package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/variant-reports-service/internal/domain"
)

// decode mirrors how handlers decode request bodies
func decode(t *testing.T, body string) Payload {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var p Payload
	require.NoError(t, dec.Decode(&p))
	return p
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verrs *domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	return verrs.Fields
}

func TestValidator_Gene(t *testing.T) {
	v := NewValidator()

	t.Run("valid payload", func(t *testing.T) {
		input, err := v.Gene(decode(t, `{"symbol":"BRCA1","fullName":"Breast cancer type 1 susceptibility protein","functionSummary":"DNA repair"}`))
		require.NoError(t, err)
		assert.Equal(t, "BRCA1", input.Symbol)
		assert.Equal(t, "Breast cancer type 1 susceptibility protein", input.FullName)
		assert.Equal(t, "DNA repair", input.FunctionSummary)
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		_, err := v.Gene(decode(t, `{"symbol":123,"functionSummary":"  "}`))
		fields := fieldErrors(t, err)
		assert.Equal(t, []string{msgString}, fields["symbol"])
		assert.Equal(t, []string{"This field is required."}, fields["fullName"])
		assert.Equal(t, []string{"This field is required."}, fields["functionSummary"])
	})

	t.Run("symbol too long", func(t *testing.T) {
		_, err := v.Gene(decode(t, `{"symbol":"ABCDEFGHIJKLMNOPQRSTUVWXYZ","fullName":"x","functionSummary":"y"}`))
		fields := fieldErrors(t, err)
		assert.Equal(t, []string{"Ensure this field has no more than 20 characters."}, fields["symbol"])
	})

	t.Run("symbol is free text", func(t *testing.T) {
		input, err := v.Gene(decode(t, `{"symbol":"BRCA 1","fullName":"x","functionSummary":"y"}`))
		require.NoError(t, err)
		assert.Equal(t, "BRCA 1", input.Symbol)
	})
}

func TestValidator_Variant(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name        string
		body        string
		wantFields  []string
		checkResult func(t *testing.T, in *domain.VariantInput)
	}{
		{
			name: "valid payload normalizes case",
			body: `{"geneId":1,"chromosome":"chr17","position":43094692,"referenceBase":"g","alternateBase":"a","impact":"high"}`,
			checkResult: func(t *testing.T, in *domain.VariantInput) {
				assert.Equal(t, int64(1), in.GeneID)
				assert.Equal(t, "chr17", in.Chromosome)
				assert.Equal(t, int64(43094692), in.Position)
				assert.Equal(t, "G", in.ReferenceBase)
				assert.Equal(t, "A", in.AlternateBase)
				assert.Equal(t, domain.HIGH_IMPACT, in.Impact)
			},
		},
		{
			name:       "missing everything",
			body:       `{}`,
			wantFields: []string{"geneId", "chromosome", "position", "referenceBase", "alternateBase", "impact"},
		},
		{
			name:       "wrong types",
			body:       `{"geneId":"one","chromosome":"17","position":1.5,"referenceBase":"G","alternateBase":"A","impact":"LOW"}`,
			wantFields: []string{"geneId", "position"},
		},
		{
			name:       "out of range values",
			body:       `{"geneId":1,"chromosome":"chromosome17","position":-4,"referenceBase":"GATTACA","alternateBase":"TTTTTT","impact":"catastrophic"}`,
			wantFields: []string{"chromosome", "position", "referenceBase", "alternateBase", "impact"},
		},
		{
			name: "unplaced contig and ambiguity codes",
			body: `{"geneId":1,"chromosome":"chrUn","position":5,"referenceBase":"R","alternateBase":"n","impact":"LOW"}`,
			checkResult: func(t *testing.T, in *domain.VariantInput) {
				assert.Equal(t, "chrUn", in.Chromosome)
				assert.Equal(t, "R", in.ReferenceBase)
				assert.Equal(t, "N", in.AlternateBase)
			},
		},
		{
			name: "zero gene id is left to resolution",
			body: `{"geneId":0,"chromosome":"1","position":5,"referenceBase":"A","alternateBase":"C","impact":"LOW"}`,
			checkResult: func(t *testing.T, in *domain.VariantInput) {
				assert.Equal(t, int64(0), in.GeneID)
			},
		},
		{
			name: "negative gene id is left to resolution",
			body: `{"geneId":-5,"chromosome":"1","position":5,"referenceBase":"A","alternateBase":"C","impact":"LOW"}`,
			checkResult: func(t *testing.T, in *domain.VariantInput) {
				assert.Equal(t, int64(-5), in.GeneID)
			},
		},
		{
			name: "deletion allele",
			body: `{"geneId":7,"chromosome":"X","position":0,"referenceBase":"AT","alternateBase":"-","impact":"MODIFIER"}`,
			checkResult: func(t *testing.T, in *domain.VariantInput) {
				assert.Equal(t, "-", in.AlternateBase)
				assert.Equal(t, int64(0), in.Position)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := v.Variant(decode(t, tt.body))
			if len(tt.wantFields) > 0 {
				fields := fieldErrors(t, err)
				for _, f := range tt.wantFields {
					assert.Contains(t, fields, f)
				}
				assert.Len(t, fields, len(tt.wantFields))
				return
			}
			require.NoError(t, err)
			tt.checkResult(t, input)
		})
	}
}

func TestValidator_Variant_UndecodedNumbers(t *testing.T) {
	v := NewValidator()

	// Payloads built in Go rather than decoded with UseNumber
	input, err := v.Variant(Payload{
		"geneId":        float64(3),
		"chromosome":    "2",
		"position":      12345,
		"referenceBase": "C",
		"alternateBase": "T",
		"impact":        "moderate",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), input.GeneID)
	assert.Equal(t, int64(12345), input.Position)
}

func TestValidator_Report(t *testing.T) {
	v := NewValidator()

	t.Run("valid payload", func(t *testing.T) {
		input, err := v.Report(decode(t, `{"patientId":"PAT-42","variantId":"0b9a8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d","detectionDate":"2024-03-15","alleleFrequency":0.125}`))
		require.NoError(t, err)
		assert.Equal(t, "PAT-42", input.PatientID)
		assert.Equal(t, "0b9a8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d", input.VariantID.String())
		assert.Equal(t, "2024-03-15", input.DetectionDate.String())
		assert.Equal(t, domain.AlleleFrequency(125), input.AlleleFrequency)
	})

	t.Run("boundary frequencies", func(t *testing.T) {
		for _, freq := range []string{"0", "1", "1.000", "0.999"} {
			_, err := v.Report(decode(t, `{"patientId":"p","variantId":"0b9a8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d","detectionDate":"2024-01-01","alleleFrequency":`+freq+`}`))
			assert.NoError(t, err, freq)
		}
	})

	t.Run("reports every invalid field", func(t *testing.T) {
		_, err := v.Report(decode(t, `{"variantId":"not-a-uuid","detectionDate":"15/03/2024","alleleFrequency":1.5}`))
		fields := fieldErrors(t, err)
		assert.Equal(t, []string{"This field is required."}, fields["patientId"])
		assert.Equal(t, []string{msgUUID}, fields["variantId"])
		assert.Equal(t, []string{msgDate}, fields["detectionDate"])
		assert.Equal(t, []string{"Ensure this value is less than or equal to 1."}, fields["alleleFrequency"])
	})

	t.Run("too many decimal places", func(t *testing.T) {
		_, err := v.Report(decode(t, `{"patientId":"p","variantId":"0b9a8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d","detectionDate":"2024-01-01","alleleFrequency":0.1234}`))
		fields := fieldErrors(t, err)
		assert.Equal(t, []string{"Ensure that there are no more than 3 decimal places."}, fields["alleleFrequency"])
		assert.Len(t, fields, 1)
	})

	t.Run("patient id kept verbatim", func(t *testing.T) {
		input, err := v.Report(decode(t, `{"patientId":" PAT-42 ","variantId":"0b9a8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d","detectionDate":"2024-03-15","alleleFrequency":0.5}`))
		require.NoError(t, err)
		assert.Equal(t, " PAT-42 ", input.PatientID)
	})

	t.Run("frequency literals", func(t *testing.T) {
		tests := []struct {
			literal string
			want    domain.AlleleFrequency
			message string
		}{
			{literal: "1e-3", want: 1},
			{literal: "0.5e0", want: 500},
			{literal: "0.1230000001", message: "Ensure that there are no more than 3 decimal places."},
			{literal: "1e-400", message: "Ensure that there are no more than 3 decimal places."},
			{literal: "1e18", message: "Ensure this value is less than or equal to 1."},
			{literal: "1e400", message: "Ensure this value is less than or equal to 1."},
			{literal: "-1e18", message: "Ensure this value is greater than or equal to 0."},
		}

		for _, tt := range tests {
			t.Run(tt.literal, func(t *testing.T) {
				input, err := v.Report(decode(t, `{"patientId":"p","variantId":"0b9a8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d","detectionDate":"2024-01-01","alleleFrequency":`+tt.literal+`}`))
				if tt.message == "" {
					require.NoError(t, err)
					assert.Equal(t, tt.want, input.AlleleFrequency)
					return
				}
				fields := fieldErrors(t, err)
				assert.Equal(t, []string{tt.message}, fields["alleleFrequency"])
				assert.Len(t, fields, 1)
			})
		}
	})

	t.Run("frequency as string", func(t *testing.T) {
		_, err := v.Report(decode(t, `{"patientId":"p","variantId":"0b9a8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d","detectionDate":"2024-01-01","alleleFrequency":"0.5"}`))
		fields := fieldErrors(t, err)
		assert.Equal(t, []string{msgNumber}, fields["alleleFrequency"])
	})

	t.Run("negative frequency", func(t *testing.T) {
		_, err := v.Report(decode(t, `{"patientId":"p","variantId":"0b9a8c7d-6e5f-4a3b-8c2d-1e0f9a8b7c6d","detectionDate":"2024-01-01","alleleFrequency":-0.1}`))
		fields := fieldErrors(t, err)
		assert.Equal(t, []string{"Ensure this value is greater than or equal to 0."}, fields["alleleFrequency"])
	})
}
