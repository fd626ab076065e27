package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ntorreslo/ndf-letters/internal/common"
)

func strp(s string) *string { return &s }

func TestParseResponseDiscardsSurroundingProse(t *testing.T) {
	resp := `Claro, aquí está: {"tasa_fwd": 4236.20, "valor_nominal_usd": 2000000, "fecha_inicio": "15/03/2024"} Espero que ayude.`
	out := ParseResponse(resp)
	require.False(t, out.Failed())
	require.NotNil(t, out.Fields.TasaFwd)
	assert.Equal(t, "4236,20", *out.Fields.TasaFwd)
	require.NotNil(t, out.Fields.ValorNominalUSD)
	assert.Equal(t, "2000000", *out.Fields.ValorNominalUSD)
	require.NotNil(t, out.Fields.FechaInicio)
	assert.Equal(t, "15/03/2024", *out.Fields.FechaInicio)
	assert.Empty(t, out.Warnings)
}

func TestParseResponseCleanObject(t *testing.T) {
	out := ParseResponse(`{"tasa_fwd": "4100,55", "valor_nominal_usd": "1500000", "fecha_inicio": "01/08/2025"}`)
	require.False(t, out.Failed())
	assert.Equal(t, strp("4100,55"), out.Fields.TasaFwd)
	assert.Equal(t, strp("1500000"), out.Fields.ValorNominalUSD)
	assert.Equal(t, strp("01/08/2025"), out.Fields.FechaInicio)
}

func TestParseResponseNullAndMissingFields(t *testing.T) {
	// null and absent both map to nil, not to an error.
	out := ParseResponse(`{"tasa_fwd": null, "fecha_inicio": "15/03/2024"}`)
	require.False(t, out.Failed())
	assert.Nil(t, out.Fields.TasaFwd)
	assert.Nil(t, out.Fields.ValorNominalUSD)
	assert.Equal(t, strp("15/03/2024"), out.Fields.FechaInicio)
}

func TestParseResponseNoJSON(t *testing.T) {
	out := ParseResponse("No encontré los campos solicitados en el texto.")
	require.True(t, out.Failed())
	assert.True(t, errors.Is(out.Err, common.ErrNoJSON))
}

func TestParseResponseMalformedJSON(t *testing.T) {
	out := ParseResponse("{not valid json}")
	require.True(t, out.Failed())
	assert.True(t, errors.Is(out.Err, common.ErrMalformedJSON))
}

func TestParseResponseEmpty(t *testing.T) {
	out := ParseResponse("   \n ")
	require.True(t, out.Failed())
	assert.True(t, errors.Is(out.Err, common.ErrEmptyResponse))
}

func TestParseResponseBracesInsideStrings(t *testing.T) {
	out := ParseResponse(`texto {"tasa_fwd": "4200", "valor_nominal_usd": null, "fecha_inicio": "15/03/2024", "nota": "llave } en cadena"} fin`)
	require.False(t, out.Failed())
	assert.Equal(t, strp("4200"), out.Fields.TasaFwd)
}

func TestParseResponseIntegralRate(t *testing.T) {
	out := ParseResponse(`{"tasa_fwd": 4200, "valor_nominal_usd": 1000000.0}`)
	require.False(t, out.Failed())
	assert.Equal(t, strp("4200"), out.Fields.TasaFwd)
	assert.Equal(t, strp("1000000"), out.Fields.ValorNominalUSD)
}

func TestValidateFieldsFlagsFormatViolations(t *testing.T) {
	tests := []struct {
		name      string
		fields    ContractFields
		wantWarns bool
	}{
		{"all canonical", ContractFields{strp("4236,20"), strp("2000000"), strp("15/03/2024")}, false},
		{"all absent", ContractFields{}, false},
		{"thousands separator in rate", ContractFields{TasaFwd: strp("4.236,20")}, true},
		{"separators in nominal", ContractFields{ValorNominalUSD: strp("2,000,000")}, true},
		{"dashed date", ContractFields{FechaInicio: strp("15-03-2024")}, true},
		{"rate below typical band", ContractFields{TasaFwd: strp("42,50")}, true},
		{"rate above typical band", ContractFields{TasaFwd: strp("8000000")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warns := ValidateFields(tt.fields)
			if tt.wantWarns {
				assert.NotEmpty(t, warns)
			} else {
				assert.Empty(t, warns)
			}
		})
	}
}

func TestValidationFlagsDoNotFailOutcome(t *testing.T) {
	// Out-of-policy values still parse into a success outcome, only flagged.
	out := ParseResponse(`{"tasa_fwd": "4.236,20", "valor_nominal_usd": "2,000,000", "fecha_inicio": "2024/03/15"}`)
	require.False(t, out.Failed())
	assert.NotEmpty(t, out.Warnings)
	assert.Equal(t, strp("4.236,20"), out.Fields.TasaFwd)
}
